package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"songstream/models"
	"songstream/songs"
	"songstream/storage"
)

const unknownArtist = "Unknown"

const streamChunkSize = 32 * 1024

// SongRepository is the slice of the songs package the handlers need.
type SongRepository interface {
	Create(ctx context.Context, song models.Song) (models.Song, error)
	Find(ctx context.Context, query string) ([]models.Song, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Song, error)
}

// ObjectStore is the slice of the storage package the handlers need.
type ObjectStore interface {
	Upload(ctx context.Context, filename, contentType string, meta map[string]string, r io.Reader) (storage.Object, error)
	Open(ctx context.Context, id primitive.ObjectID) (io.ReadCloser, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Handler serves the song catalog API. Dependencies are passed in so tests
// can substitute in-memory stores.
type Handler struct {
	songs  SongRepository
	store  ObjectStore
	logger *slog.Logger
}

func New(repo SongRepository, store ObjectStore, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{songs: repo, store: store, logger: logger}
}

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// UploadSong writes the payload to the object store, then links it from a new
// song record. The blob write completes before the record exists, so no
// record ever points at a partially written object. If the record insert
// fails we try to delete the blob; when that also fails the orphan is logged
// and left behind.
func (h *Handler) UploadSong(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	title := c.PostForm("title")
	if title == "" {
		title = fileHeader.Filename
	}
	artist := c.PostForm("artist")
	if artist == "" {
		artist = unknownArtist
	}
	mimeType := fileHeader.Header.Get("Content-Type")

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	ctx := c.Request.Context()
	meta := map[string]string{"title": title, "artist": artist}
	obj, err := h.store.Upload(ctx, fileHeader.Filename, mimeType, meta, src)
	if err != nil {
		h.logError(c, "object upload failed", "filename", fileHeader.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	song, err := h.songs.Create(ctx, models.Song{
		Title:    title,
		Artist:   artist,
		Filename: obj.Filename,
		ObjectID: obj.ID,
		MimeType: mimeType,
	})
	if err != nil {
		if delErr := h.store.Delete(ctx, obj.ID); delErr != nil {
			h.logError(c, "orphaned object left in store", "objectId", obj.ID.Hex(), "error", delErr)
		}
		h.logError(c, "song record creation failed", "filename", obj.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "song": song})
}

// ListSongs returns every matching record, newest first. No pagination; the
// full matching set goes out on every call.
func (h *Handler) ListSongs(c *gin.Context) {
	results, err := h.songs.Find(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.logError(c, "song listing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if results == nil {
		results = []models.Song{}
	}
	c.JSON(http.StatusOK, gin.H{"songs": results})
}

// StreamSong pipes the stored bytes to the caller. A malformed or unknown id
// and a record whose blob has gone missing both answer 404, matching the
// external contract; the message text is the only difference.
func (h *Handler) StreamSong(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.String(http.StatusNotFound, "Song not found")
		return
	}

	ctx := c.Request.Context()
	song, err := h.songs.GetByID(ctx, id)
	if errors.Is(err, songs.ErrNotFound) {
		c.String(http.StatusNotFound, "Song not found")
		return
	}
	if err != nil {
		h.logError(c, "song lookup failed", "id", id.Hex(), "error", err)
		c.String(http.StatusInternalServerError, err.Error())
		return
	}

	stream, err := h.store.Open(ctx, song.ObjectID)
	if errors.Is(err, storage.ErrNotFound) {
		c.String(http.StatusNotFound, "File not found")
		return
	}
	if err != nil {
		h.logError(c, "object open failed", "objectId", song.ObjectID.Hex(), "error", err)
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	defer stream.Close()

	h.pipe(c, stream, song.MimeType)
}

// pipe copies the stream to the response in fixed-size chunks, flushing as it
// goes. Writes happen synchronously, so the read side never outruns the
// client; a cancelled request context or a failed write stops the copy.
// The status is committed on the first successful read, so a stream that
// fails before producing any bytes still answers 404.
func (h *Handler) pipe(c *gin.Context, stream io.Reader, mimeType string) {
	done := c.Request.Context().Done()
	buf := make([]byte, streamChunkSize)
	started := false
	for {
		select {
		case <-done:
			return
		default:
		}

		n, readErr := stream.Read(buf)
		if n > 0 {
			if !started {
				c.Header("Content-Type", mimeType)
				c.Status(http.StatusOK)
				started = true
			}
			if _, writeErr := c.Writer.Write(buf[:n]); writeErr != nil {
				return
			}
			c.Writer.Flush()
		}
		if readErr == io.EOF {
			if !started {
				c.Header("Content-Type", mimeType)
				c.Status(http.StatusOK)
			}
			return
		}
		if readErr != nil {
			if !started {
				c.String(http.StatusNotFound, "File not found")
				return
			}
			h.logError(c, "stream read failed", "error", readErr)
			return
		}
	}
}

// logError attaches the request id assigned by the middleware to failure
// log lines.
func (h *Handler) logError(c *gin.Context, msg string, args ...any) {
	if id := c.GetString("requestId"); id != "" {
		args = append(args, "requestId", id)
	}
	h.logger.Error(msg, args...)
}
