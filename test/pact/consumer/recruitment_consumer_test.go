//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"

	pacttest "github.com/Apurer/lecturer-recruitment/test/pact"
)

type commandResult struct {
	EnrollmentID string   `json:"enrollmentId"`
	Version      uint64   `json:"version"`
	Events       []string `json:"events"`
}

type enrollment struct {
	ID                  string `json:"id"`
	FullName            string `json:"fullName"`
	Region              string `json:"region"`
	IsCurrentSubmission bool   `json:"isCurrentSubmission"`
	HasLecturerRights   bool   `json:"hasLecturerRights"`
}

type problemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type apiError struct {
	status int
	title  string
	detail string
}

func (e apiError) Error() string {
	msg := e.title
	if msg == "" {
		msg = "api error"
	}
	if e.detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.detail)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.status)
}

func TestRecruitmentPortalContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	commandResultMatcher := matchers.Map{
		"enrollmentId": matchers.Like(pacttest.ExistingEnrollmentID),
		"version":      matchers.Like(1),
		"events":       matchers.ArrayMinLike("enrollment.recruitment_form_submitted", 1),
	}

	pact.AddInteraction().
		Given(pacttest.StateCampaignOpen).
		UponReceiving("a recruitment form submission").
		WithRequest("POST", "/v1/enrollments", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(pacttest.ExampleFormPayload())
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(commandResultMatcher)
		})

	pact.AddInteraction().
		Given(pacttest.StateEnrollmentExists).
		UponReceiving("a request to fetch an existing enrollment").
		WithRequest("GET", "/v1/enrollments/"+pacttest.ExistingEnrollmentID).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"id":                  matchers.S(pacttest.ExistingEnrollmentID),
				"fullName":            matchers.Like(pacttest.CandidateName),
				"region":              matchers.Like(pacttest.CandidateRegion),
				"isCurrentSubmission": matchers.Like(true),
				"hasLecturerRights":   matchers.Like(false),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateEnrollmentExists).
		UponReceiving("a coordinator recording a phone call").
		WithRequest("POST", "/v1/enrollments/"+pacttest.ExistingEnrollmentID+"/contacts", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("X-User-ID", matchers.S(strconv.FormatInt(pacttest.CoordinatorID, 10)))
			b.JSONBody(matchers.Map{
				"communicationChannel": matchers.S("outgoing_phone"),
				"content":              matchers.S("Confirmed availability for the April training"),
			})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"enrollmentId": matchers.S(pacttest.ExistingEnrollmentID),
				"version":      matchers.Like(2),
				"events":       matchers.ArrayMinLike("enrollment.contact_occured", 1),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateEnrollmentMissing).
		UponReceiving("a request for a missing enrollment").
		WithRequest("GET", "/v1/enrollments/"+pacttest.MissingEnrollmentID).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/not-found"),
				"title":  matchers.S("Resource Not Found"),
				"status": matchers.Like(http.StatusNotFound),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newRecruitmentClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		submitted, err := client.Submit(ctx, pacttest.ExampleFormPayload())
		if err != nil {
			return fmt.Errorf("submit form: %w", err)
		}
		if submitted.EnrollmentID == "" {
			return errors.New("expected an enrollment id")
		}

		fetched, err := client.Get(ctx, pacttest.ExistingEnrollmentID)
		if err != nil {
			return fmt.Errorf("get enrollment: %w", err)
		}
		if fetched.ID != pacttest.ExistingEnrollmentID {
			return fmt.Errorf("expected enrollment %s, got %+v", pacttest.ExistingEnrollmentID, fetched)
		}

		contact, err := client.RecordContact(ctx, pacttest.ExistingEnrollmentID, pacttest.CoordinatorID, map[string]any{
			"communicationChannel": "outgoing_phone",
			"content":              "Confirmed availability for the April training",
		})
		if err != nil {
			return fmt.Errorf("record contact: %w", err)
		}
		if len(contact.Events) == 0 {
			return errors.New("expected the contact event in the result")
		}

		_, err = client.Get(ctx, pacttest.MissingEnrollmentID)
		var apiErr apiError
		if !errors.As(err, &apiErr) || apiErr.status != http.StatusNotFound {
			return fmt.Errorf("expected 404 for enrollment %s, got %v", pacttest.MissingEnrollmentID, err)
		}
		return nil
	})
	require.NoError(t, err)
}

type recruitmentClient struct {
	baseURL    string
	httpClient *http.Client
}

func newRecruitmentClient(config pactconsumer.MockServerConfig) *recruitmentClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	return &recruitmentClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: &http.Client{Transport: transport, Timeout: 10 * time.Second},
	}
}

func (c *recruitmentClient) Submit(ctx context.Context, form map[string]any) (*commandResult, error) {
	var out commandResult
	if err := c.do(ctx, http.MethodPost, "/v1/enrollments", nil, form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *recruitmentClient) Get(ctx context.Context, id string) (*enrollment, error) {
	var out enrollment
	if err := c.do(ctx, http.MethodGet, "/v1/enrollments/"+id, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *recruitmentClient) RecordContact(ctx context.Context, id string, coordinator int64, payload map[string]any) (*commandResult, error) {
	headers := map[string]string{"X-User-ID": strconv.FormatInt(coordinator, 10)}
	var out commandResult
	if err := c.do(ctx, http.MethodPost, "/v1/enrollments/"+id+"/contacts", headers, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *recruitmentClient) do(ctx context.Context, method, path string, headers map[string]string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(res)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func decodeAPIError(res *http.Response) error {
	var problem problemDetail
	_ = json.NewDecoder(res.Body).Decode(&problem)
	status := problem.Status
	if status == 0 {
		status = res.StatusCode
	}
	return apiError{status: status, title: problem.Title, detail: problem.Detail}
}
