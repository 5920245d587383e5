// README: Firebase Admin SDK initialisation: auth verifier, Firestore and Storage clients.
package infra

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// IDToken holds the verified token data used by downstream middleware.
type IDToken struct {
	UID    string
	Claims map[string]interface{}
}

// TokenVerifier verifies a raw ID token string and returns token data.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*IDToken, error)
}

// Firebase wraps one Admin SDK app shared by every Firebase-backed collaborator.
type Firebase struct {
	app    *firebase.App
	bucket string
}

// NewFirebase initialises the app. If credentialsFile is non-empty it is used as the
// service-account JSON path; otherwise application-default credentials are used.
func NewFirebase(ctx context.Context, projectID, credentialsFile, storageBucket string) (*Firebase, error) {
	opts := []option.ClientOption{}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID, StorageBucket: storageBucket}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}
	return &Firebase{app: app, bucket: storageBucket}, nil
}

func (f *Firebase) Firestore(ctx context.Context) (*firestore.Client, error) {
	client, err := f.app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase app.Firestore: %w", err)
	}
	return client, nil
}

// Bucket returns the default storage bucket handle and its name.
func (f *Firebase) Bucket(ctx context.Context) (*storage.BucketHandle, string, error) {
	client, err := f.app.Storage(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("firebase app.Storage: %w", err)
	}
	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, "", fmt.Errorf("firebase default bucket: %w", err)
	}
	return bucket, f.bucket, nil
}

// Verifier creates a TokenVerifier backed by Firebase Auth.
func (f *Firebase) Verifier(ctx context.Context) (TokenVerifier, error) {
	client, err := f.app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase app.Auth: %w", err)
	}
	return &firebaseVerifier{client: client}, nil
}

type firebaseVerifier struct {
	client *auth.Client
}

func (v *firebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (*IDToken, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return &IDToken{UID: token.UID, Claims: token.Claims}, nil
}
