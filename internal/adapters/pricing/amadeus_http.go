package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"flight-price-service/internal/domain"

	"golang.org/x/oauth2"
)

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

type apiErrorBody struct {
	Errors []struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// message prefers the provider's structured error title over the raw body.
func (e *httpStatusError) message() string {
	var body apiErrorBody
	if err := json.Unmarshal([]byte(e.Body), &body); err == nil && len(body.Errors) > 0 {
		first := body.Errors[0]
		if first.Detail != "" {
			return strings.TrimSpace(first.Title + ": " + first.Detail)
		}
		return first.Title
	}
	if len(e.Body) > 200 {
		return e.Body[:200]
	}
	return e.Body
}

func (a *AmadeusProvider) newRequest(
	ctx context.Context,
	method string,
	url string,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.amadeus+json, application/json")

	return req, nil
}

func (a *AmadeusProvider) do(req *http.Request) (*http.Response, error) {
	resp, err := a.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// classify maps any transport, auth or status error onto the failure taxonomy.
func classify(err error) *domain.ProviderFailure {
	var pf *domain.ProviderFailure
	if errors.As(err, &pf) {
		return pf
	}

	var he *httpStatusError
	if errors.As(err, &he) {
		return domain.ProviderRejected(he.Code, he.message())
	}

	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		status := 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		return domain.ProviderRejected(status, "authentication rejected")
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return domain.TimeoutFailure(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return domain.TimeoutFailure(err)
		}
		return domain.NetworkFailure(err)
	}

	return domain.UnexpectedFailure(err)
}
