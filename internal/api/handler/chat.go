package handler

import (
	"errors"
	"net/http"
	"strconv"

	"chatterbox/backend/internal/config"
	"chatterbox/backend/internal/models"
	"chatterbox/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createChatRequest struct {
	ParticipantID string   `json:"participantId"`
	IsGroupChat   bool     `json:"isGroupChat"`
	Name          string   `json:"name"`
	Participants  []string `json:"participants"`
}

type sendMessageRequest struct {
	Content     string        `json:"content"`
	MessageType string        `json:"messageType"`
	Media       *models.Media `json:"media"`
}

// GetChats lists the caller's chats, most recently active first.
func (h *Handler) GetChats(c *gin.Context) {
	chats, err := h.Storage.GetChatsForUser(c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

// CreateChat starts a direct or group chat. Creating a direct chat that
// already exists returns the existing one instead of a duplicate.
func (h *Handler) CreateChat(c *gin.Context) {
	userID := c.GetString("userID")

	var req createChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if !req.IsGroupChat && req.ParticipantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Participant ID is required for direct chat"})
		return
	}
	if req.IsGroupChat && len(req.Participants) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Group chat requires at least 2 participants"})
		return
	}

	var participantHexIDs []string
	if req.IsGroupChat {
		participantHexIDs = append(req.Participants, userID)
	} else {
		existing, err := h.Storage.FindDirectChat(userID, req.ParticipantID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
		if existing != nil {
			c.JSON(http.StatusOK, gin.H{"message": "Chat already exists", "chat": existing})
			return
		}
		participantHexIDs = []string{userID, req.ParticipantID}
	}

	chat := &models.Chat{IsGroupChat: req.IsGroupChat, Avatar: ""}
	for _, hex := range participantHexIDs {
		oid, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid participant ID"})
			return
		}
		chat.ParticipantIDs = append(chat.ParticipantIDs, oid)
	}
	if req.IsGroupChat {
		chat.Name = req.Name
		chat.AdminID, _ = primitive.ObjectIDFromHex(userID)
	}

	if err := h.Storage.CreateChat(chat); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	populated, err := h.Storage.GetChatWithParticipants(chat.ID.Hex())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Chat created successfully", "chat": populated})
}

// SearchUsers finds other users by username or email, with live
// presence overlaid from the snapshot store.
func (h *Handler) SearchUsers(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Search query is required"})
		return
	}

	users, err := h.Storage.SearchUsers(query, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	online, err := h.Storage.GetOnlineUserIDs()
	if err == nil {
		onlineSet := make(map[string]bool, len(online))
		for _, id := range online {
			onlineSet[id] = true
		}
		for i := range users {
			if onlineSet[users[i].ID.Hex()] {
				users[i].Status = models.StatusOnline
			} else {
				users[i].Status = models.StatusOffline
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GetChatMessages returns one page of a chat's history. Only chat
// participants may read it.
func (h *Handler) GetChatMessages(c *gin.Context) {
	chatID := c.Param("chatId")

	if _, _, ok := h.participantGate(c, chatID); !ok {
		return
	}

	page, _ := strconv.ParseInt(c.DefaultQuery("page", strconv.Itoa(config.DefaultMessagePage)), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", strconv.Itoa(config.DefaultMessageLimit)), 10, 64)

	messages, err := h.Storage.GetChatMessages(chatID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// SendMessage is the REST send path. It persists exactly like the
// socket path but does not broadcast; clients sending over REST are
// expected to refresh via the chat list.
func (h *Handler) SendMessage(c *gin.Context) {
	chatID := c.Param("chatId")
	userID := c.GetString("userID")

	if _, _, ok := h.participantGate(c, chatID); !ok {
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if req.MessageType == "" {
		req.MessageType = models.MessageTypeText
	}
	if !models.ValidMessageType(req.MessageType) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid message type"})
		return
	}

	msg, err := h.Storage.CreateMessage(userID, chatID, req.Content, req.MessageType, req.Media)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	if err := h.Storage.UpdateLastMessage(chatID, msg.ID.Hex()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	populated, err := h.Storage.GetMessageWithSender(msg.ID.Hex())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Message sent successfully", "data": populated})
}

// participantGate loads the chat and rejects callers who are not
// participants. A missing chat is indistinguishable from a forbidden one.
func (h *Handler) participantGate(c *gin.Context, chatID string) (*models.Chat, primitive.ObjectID, bool) {
	caller, err := primitive.ObjectIDFromHex(c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid user"})
		return nil, primitive.NilObjectID, false
	}

	chat, err := h.Storage.GetChatWithParticipants(chatID)
	if errors.Is(err, storage.ErrChatNotFound) || errors.Is(err, storage.ErrInvalidID) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Access denied"})
		return nil, primitive.NilObjectID, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return nil, primitive.NilObjectID, false
	}
	if !chat.HasParticipant(caller) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Access denied"})
		return nil, primitive.NilObjectID, false
	}
	return chat, caller, true
}
