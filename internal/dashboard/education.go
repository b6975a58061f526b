package dashboard

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Adda-Baaj/khobor-desk/pkg/httpclient"
)

var errEmptyAnswer = errors.New("Received an empty or incomplete answer from the agent.")

// Ask sends an education question and returns the assistant's answer.
func (c *Client) Ask(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", invalid("query", "Please enter an education-related question.")
	}

	res, err := c.api.Request(ctx, http.MethodPost, "/agent/education/query", nil, map[string]string{"query": query})
	if err != nil {
		return "", askError(err)
	}

	var body struct {
		Answer string `json:"answer"`
	}
	if err := res.Decode(&body); err != nil || strings.TrimSpace(body.Answer) == "" {
		return "", errEmptyAnswer
	}
	return body.Answer, nil
}

func askError(err error) error {
	herr, ok := httpclient.AsError(err)
	if !ok || herr.Status == 0 {
		return err
	}
	switch {
	case herr.Status == http.StatusUnauthorized:
		return errors.New("Authentication required. Please ensure you are logged in.")
	case herr.Status == http.StatusNotFound:
		return errors.New("Could not reach the agent endpoint (404 Not Found). Please check configuration.")
	case herr.Status == http.StatusServiceUnavailable:
		return errors.New("The AI model service appears to be temporarily unavailable. Please try again later.")
	case herr.Status >= http.StatusInternalServerError:
		return errors.New("An unexpected server error occurred. Please try again later.")
	}
	return herr
}
