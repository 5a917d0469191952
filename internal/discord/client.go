package discord

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a thin REST client for the Discord-facing service. It carries
// no scheduling logic: the engine decides, this client delivers.
type Client struct {
	BaseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// PostMessage sends a channel message and returns the platform message id,
// which callers use as the session-cache handle.
func (c *Client) PostMessage(channelID, content string) (string, error) {
	return c.post(map[string]any{
		"channel_id": channelID,
		"content":    content,
	})
}

// PostMessageEmbed sends a message with an embed attached.
func (c *Client) PostMessageEmbed(channelID, content string, embed *Embed) (string, error) {
	return c.post(map[string]any{
		"channel_id": channelID,
		"content":    content,
		"embed":      embed,
	})
}

func (c *Client) post(reqBody map[string]any) (string, error) {
	jsonData, _ := json.Marshal(reqBody)

	resp, err := c.httpClient.Post(c.BaseURL+"/post", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("post message failed: status %d: %s", resp.StatusCode, string(body))
	}

	var result map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result["message_id"], nil
}

// AddReaction attaches a reaction emoji to a message.
func (c *Client) AddReaction(channelID, messageID, emoji string) error {
	return c.simplePost("/message/react", map[string]string{
		"channel_id": channelID,
		"message_id": messageID,
		"emoji":      emoji,
	})
}

// RemoveReaction strips a user's reaction from a message. Used when a
// non-flatmate reacts or a reaction is not valid for the sender.
func (c *Client) RemoveReaction(channelID, messageID, emoji, userID string) error {
	return c.simplePost("/message/unreact", map[string]string{
		"channel_id": channelID,
		"message_id": messageID,
		"emoji":      emoji,
		"user_id":    userID,
	})
}

// DeleteMessage removes a message.
func (c *Client) DeleteMessage(channelID, messageID string) error {
	reqBody := map[string]string{
		"channel_id": channelID,
		"message_id": messageID,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodDelete, c.BaseURL+"/message/delete", bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// PlayCelebration asks the voice side to play the completion sound. Fire
// and forget; a failed celebration never fails the completion.
func (c *Client) PlayCelebration() {
	go func() {
		_ = c.simplePost("/audio/celebrate", map[string]string{})
	}()
}

func (c *Client) simplePost(path string, reqBody map[string]string) error {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Post(c.BaseURL+path, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
