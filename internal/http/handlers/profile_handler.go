// README: Driver profile and rider lookup handlers.
package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"kargo/internal/modules/profile"
)

// maxPictureBytes caps profile picture uploads.
const maxPictureBytes = 5 << 20

type ProfileHandler struct {
	profiles *profile.Service
}

func NewProfileHandler(profiles *profile.Service) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) Me(c *gin.Context) {
	d, err := h.profiles.Driver(c.Request.Context(), callerID(c))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, d)
}

func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	var info profile.DriverInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	d, err := h.profiles.UpdateDriverInfo(c.Request.Context(), callerID(c), info)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, d)
}

// UploadPicture accepts either a multipart form with a "picture" file or a raw image body
// whose Content-Type names the image type.
func (h *ProfileHandler) UploadPicture(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPictureBytes)

	var (
		body        io.Reader
		contentType string
	)
	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if mediaType == "multipart/form-data" {
		fh, err := c.FormFile("picture")
		if err != nil {
			if errors.As(err, new(*http.MaxBytesError)) {
				writeDomainError(c, err)
				return
			}
			writeError(c, http.StatusBadRequest, "missing picture file")
			return
		}
		f, err := fh.Open()
		if err != nil {
			writeError(c, http.StatusBadRequest, "unreadable picture file")
			return
		}
		defer f.Close()
		body = f
		contentType, _, _ = mime.ParseMediaType(fh.Header.Get("Content-Type"))
	} else {
		body = c.Request.Body
		contentType = mediaType
	}

	url, err := h.profiles.UploadPicture(c.Request.Context(), callerID(c), contentType, body)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"profilePicture": url})
}

func (h *ProfileHandler) Rider(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.profiles.Rider(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}
