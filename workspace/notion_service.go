package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const pagesURL = "https://api.notion.com/v1/pages"
const notionVersion = "2022-06-28"

// Application carries the submitted fields the workspace database keeps. The
// résumé is referenced by URL only; the bytes live in the file store.
type Application struct {
	Name       string
	Email      string
	Phone      string
	SocialURLs string
	Roles      []string
	ResumeURL  string
}

type NotionService struct {
	secret     string
	databaseID string
	client     *http.Client
}

func NewNotionService(secret, databaseID string) *NotionService {
	return &NotionService{
		secret:     secret,
		databaseID: databaseID,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// RecordApplication inserts the applicant as a page in the Notion database,
// mapping each field onto the workspace schema. Errors are returned as-is;
// the signup workflow decides what the caller gets to see.
func (s *NotionService) RecordApplication(ctx context.Context, app Application) error {
	roles := make([]map[string]string, 0, len(app.Roles))
	for _, role := range app.Roles {
		roles = append(roles, map[string]string{"name": role})
	}

	payload := map[string]any{
		"parent": map[string]string{"database_id": s.databaseID},
		"properties": map[string]any{
			"Name": map[string]any{
				"title": []map[string]any{
					{"text": map[string]string{"content": app.Name}},
				},
			},
			"Email": map[string]any{"email": app.Email},
			"Phone": map[string]any{"phone_number": app.Phone},
			"Social URLs": map[string]any{
				"rich_text": []map[string]any{
					{"text": map[string]string{"content": app.SocialURLs}},
				},
			},
			"Roles": map[string]any{"multi_select": roles},
			"Resume": map[string]any{
				"files": []map[string]any{
					{
						"name":     "Resume",
						"external": map[string]string{"url": app.ResumeURL},
					},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pagesURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.secret)
	req.Header.Set("Notion-Version", notionVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to insert page into Notion: %s", string(respBody))
	}

	return nil
}
