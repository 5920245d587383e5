package testutil

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/firestore"
)

// Firestore returns a client for the emulator at FIRESTORE_EMULATOR_HOST and deletes
// every document of the given collections first. The test is skipped without an emulator.
func Firestore(t *testing.T, collections ...string) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set; skipping Firestore emulator tests")
	}
	ctx := context.Background()
	client, err := firestore.NewClient(ctx, "kargo-test")
	if err != nil {
		t.Fatalf("firestore client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	for _, name := range collections {
		refs, err := client.Collection(name).DocumentRefs(ctx).GetAll()
		if err != nil {
			t.Fatalf("list %s: %v", name, err)
		}
		for _, ref := range refs {
			if _, err := ref.Delete(ctx); err != nil {
				t.Fatalf("delete %s/%s: %v", name, ref.ID, err)
			}
		}
	}
	return client
}
