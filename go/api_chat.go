package portalserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	assistantports "github.com/Apurer/cement-dealer-portal/internal/domains/assistant/ports"
)

// ChatMessage is the body of POST /api/chat.
type ChatMessage struct {
	Message string `json:"message" binding:"required"`
}

// ChatResponse carries the assistant's answer, or the apology when it is unavailable.
type ChatResponse struct {
	Response string `json:"response"`
}

// ChatAPI proxies dealer questions to the assistant.
type ChatAPI struct {
	service assistantports.Service
}

// NewChatAPI wires dependencies.
func NewChatAPI(service assistantports.Service) ChatAPI {
	return ChatAPI{service: service}
}

// Post /api/chat
func (api *ChatAPI) Chat(c *gin.Context) {
	dealer, ok := mustDealer(c)
	if !ok {
		return
	}
	var payload ChatMessage
	if !bindJSON(c, &payload) {
		return
	}
	reply, err := api.service.Reply(c.Request.Context(), dealer.ID, payload.Message)
	if err != nil {
		respondPortalError(c, err)
		return
	}
	c.JSON(http.StatusOK, ChatResponse{Response: reply.Text})
}
