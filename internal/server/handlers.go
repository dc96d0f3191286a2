package server

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bft-labs/lockstep/internal/adapters/ws"
	"github.com/bft-labs/lockstep/internal/domain"
	"github.com/bft-labs/lockstep/internal/ports"
)

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"Hello": "World"})
}

func (s *Server) handlePostData(c *gin.Context) {
	var body any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": body})
}

func (s *Server) handleUpload(c *gin.Context) {
	header, err := c.FormFile(FileField)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingFile.Error()})
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	result, err := s.deps.Transfers.Store(c.Request.Context(), domain.TransferRequest{
		FileName: rawFileName(header),
		Content:  f,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrInvalidFileName) || errors.Is(err, domain.ErrMissingFile) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"info":     result.Info(),
		"path":     result.Path,
		"filename": result.FileName,
		"size":     result.Size,
		"sha3_256": result.Digest,
	})
}

func (s *Server) handleStream(c *gin.Context) {
	conn, err := ws.Accept(c.Writer, c.Request)
	if err != nil {
		// The upgrader has already replied.
		s.deps.Logger.Warn("websocket upgrade failed",
			ports.String("remote", c.ClientIP()),
			ports.Err(err),
		)
		return
	}

	if !s.trackSession() {
		_ = conn.CloseGoingAway("server shutting down")
		return
	}
	defer s.sessions.Done()

	if err := s.deps.Endpoint.Serve(s.sessionCtx, conn); err != nil {
		s.deps.Logger.Warn("session ended with error",
			ports.String("remote", conn.RemoteAddr()),
			ports.Err(err),
		)
	}
}

// rawFileName returns the filename parameter exactly as the client sent it.
// multipart strips directories from FileHeader.Filename, which would let
// "../x" or "/x" through validation as "x".
func rawFileName(header *multipart.FileHeader) string {
	_, params, err := mime.ParseMediaType(header.Header.Get("Content-Disposition"))
	if err != nil {
		return header.Filename
	}
	if name, ok := params["filename"]; ok {
		return name
	}
	return header.Filename
}
