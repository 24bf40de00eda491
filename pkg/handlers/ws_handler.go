package handlers

import (
	"encoding/json"
	"errors"
	"io"

	"go.uber.org/zap"
	"golang.org/x/net/websocket"

	"indexo/pkg/models"
	"indexo/pkg/services"
)

// wsMessage is a request sent by the plugin over the socket
type wsMessage struct {
	Type      string          `json:"type"`
	Token     string          `json:"token"`
	IndexData json.RawMessage `json:"indexData"`
	FileKey   string          `json:"fileKey"`
	FileName  string          `json:"fileName"`
	ProjectID string          `json:"projectId"`
}

type wsReply struct {
	Type      string `json:"type"`
	ProjectID string `json:"projectId,omitempty"`
	Message   string `json:"message"`
}

// WebSocketHandler accepts uploads over a long lived socket. Any origin may
// connect; the secret key guards uploads.
func (h *Handlers) WebSocketHandler() websocket.Server {
	return websocket.Server{Handler: h.serveSocket}
}

func (h *Handlers) serveSocket(ws *websocket.Conn) {
	defer ws.Close()
	h.log.Debug("Plugin connected", zap.String("remote", ws.Request().RemoteAddr))

	for {
		var msg wsMessage
		if err := websocket.JSON.Receive(ws, &msg); err != nil {
			if errors.Is(err, io.EOF) {
				h.log.Debug("Plugin disconnected")
				return
			}
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				h.send(ws, wsReply{Type: "upload-error", Message: "Invalid message"})
				continue
			}
			h.log.Warn("Socket receive failed", zap.Error(err))
			return
		}

		h.send(ws, h.handleSocketMessage(ws, msg))
	}
}

func (h *Handlers) handleSocketMessage(ws *websocket.Conn, msg wsMessage) wsReply {
	if msg.Type != "upload-index" {
		return wsReply{Type: "upload-error", Message: "Unknown message type"}
	}
	if err := services.CheckToken(h.secretKey, msg.Token); err != nil {
		return wsReply{Type: "upload-error", Message: "Unauthorized"}
	}

	projectID := msg.ProjectID
	if projectID == "" {
		projectID = msg.FileKey
	}
	rec, err := h.svc.Upload(ws.Request().Context(), models.Upload{
		ProjectID:    projectID,
		FigmaFileKey: msg.FileKey,
		FileName:     msg.FileName,
		IndexData:    msg.IndexData,
	})
	if err != nil {
		h.log.Warn("Socket upload failed", zap.Error(err))
		return wsReply{Type: "upload-error", Message: "Failed to upload index: " + err.Error()}
	}

	return wsReply{
		Type:      "upload-success",
		ProjectID: rec.ID,
		Message:   "Index uploaded successfully",
	}
}

func (h *Handlers) send(ws *websocket.Conn, reply wsReply) {
	if err := websocket.JSON.Send(ws, reply); err != nil {
		h.log.Warn("Socket send failed", zap.Error(err))
	}
}
