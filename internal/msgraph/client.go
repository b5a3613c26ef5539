package msgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const graphBaseURL = "https://graph.microsoft.com/v1.0"

// graphTimeLayout is the zone-less dateTime format Graph pairs with a timeZone name.
const graphTimeLayout = "2006-01-02T15:04:05"

// Client is a Microsoft Graph calendar API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient returns a client issuing requests through httpClient, which is
// expected to authenticate them. An empty baseURL selects Graph v1.0.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = graphBaseURL
	}
	return &Client{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

// DateTimeZone is a Graph dateTimeTimeZone value.
type DateTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// NewDateTimeZone formats t in its own location.
func NewDateTimeZone(t time.Time) DateTimeZone {
	return DateTimeZone{DateTime: t.Format(graphTimeLayout), TimeZone: t.Location().String()}
}

// ItemBody is a Graph itemBody value.
type ItemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// Location is a Graph location value.
type Location struct {
	DisplayName string `json:"displayName"`
}

// CalendarEvent represents a Microsoft Graph calendar event.
type CalendarEvent struct {
	ID            string       `json:"id,omitempty"`
	Subject       string       `json:"subject"`
	Body          *ItemBody    `json:"body,omitempty"`
	Start         DateTimeZone `json:"start"`
	End           DateTimeZone `json:"end"`
	Location      *Location    `json:"location,omitempty"`
	Categories    []string     `json:"categories,omitempty"`
	ShowAs        string       `json:"showAs,omitempty"`
	TransactionID string       `json:"transactionId,omitempty"`
}

// calendarViewResponse is the Graph API paged response for calendar events.
type calendarViewResponse struct {
	Value    []CalendarEvent `json:"value"`
	NextLink string          `json:"@odata.nextLink"`
}

func (c *Client) calendarPath(calendarID string) string {
	if calendarID == "" {
		return c.baseURL + "/me"
	}
	return c.baseURL + "/me/calendars/" + url.PathEscape(calendarID)
}

// GetCalendarView fetches calendar events in [from, to). calendarID "" is the
// default calendar.
func (c *Client) GetCalendarView(ctx context.Context, calendarID string, from, to time.Time) ([]CalendarEvent, error) {
	q := url.Values{}
	q.Set("startDateTime", from.UTC().Format(time.RFC3339))
	q.Set("endDateTime", to.UTC().Format(time.RFC3339))
	q.Set("$select", "id,subject,start,end,transactionId")
	q.Set("$top", "100")
	endpoint := c.calendarPath(calendarID) + "/calendarView?" + q.Encode()

	var all []CalendarEvent
	for endpoint != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		var page calendarViewResponse
		if err := c.do(req, http.StatusOK, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Value...)
		endpoint = page.NextLink
	}
	return all, nil
}

// CreateEvent creates ev in the calendar and returns the stored event.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, ev CalendarEvent) (CalendarEvent, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return CalendarEvent{}, fmt.Errorf("encoding event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.calendarPath(calendarID)+"/events", bytes.NewReader(body))
	if err != nil {
		return CalendarEvent{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	var created CalendarEvent
	if err := c.do(req, http.StatusCreated, &created); err != nil {
		return CalendarEvent{}, err
	}
	return created, nil
}

func (c *Client) do(req *http.Request, wantStatus int, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graph API request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != wantStatus {
		return fmt.Errorf("graph API error %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding graph response: %w", err)
	}
	return nil
}
