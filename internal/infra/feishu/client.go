package feishu

import (
	"context"
	"encoding/json"
	"fmt"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
)

// Receive id types accepted by the message API
const (
	ReceiveIDTypeOpenID  = larkim.ReceiveIdTypeOpenId
	ReceiveIDTypeUserID  = larkim.ReceiveIdTypeUserId
	ReceiveIDTypeUnionID = larkim.ReceiveIdTypeUnionId
	ReceiveIDTypeEmail   = larkim.ReceiveIdTypeEmail
	ReceiveIDTypeChatID  = larkim.ReceiveIdTypeChatId
)

// Client is the Feishu push client
type Client struct {
	larkCli *lark.Client
}

// NewClient creates a new Feishu client
func NewClient(appID, appSecret string) *Client {
	return &Client{
		larkCli: lark.NewClient(appID, appSecret),
	}
}

// SendText sends a plain text message to receiveID
func (c *Client) SendText(ctx context.Context, receiveIDType, receiveID, text string) error {
	content := map[string]string{"text": text}
	contentJSON, _ := json.Marshal(content)
	return c.send(ctx, receiveIDType, receiveID, larkim.MsgTypeText, string(contentJSON))
}

// SendPost sends a rich text (post) message with a title line
func (c *Client) SendPost(ctx context.Context, receiveIDType, receiveID, title, text string) error {
	post := map[string]interface{}{
		"zh_cn": map[string]interface{}{
			"title": title,
			"content": [][]map[string]interface{}{
				{{"tag": "text", "text": text}},
			},
		},
	}
	contentJSON, _ := json.Marshal(post)
	return c.send(ctx, receiveIDType, receiveID, larkim.MsgTypePost, string(contentJSON))
}

func (c *Client) send(ctx context.Context, receiveIDType, receiveID, msgType, content string) error {
	if receiveIDType == "" {
		receiveIDType = ReceiveIDTypeOpenID
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(receiveIDType).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(receiveID).
			MsgType(msgType).
			Content(content).
			Build()).
		Build()

	resp, err := c.larkCli.Im.Message.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("send message failed: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("send message error: code=%d msg=%s", resp.Code, resp.Msg)
	}
	return nil
}
