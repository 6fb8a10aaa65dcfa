package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/jinbot/jinbot/pkg/server/middleware"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	memeDir      string
	instance     *ServerInstance
	response     *http.Response
	responseBody []byte
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{tc: tc}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(s.beforeScenario)
	sc.After(s.afterScenario)

	// Setup steps
	sc.Step(`^the meme library contains "([^"]*)"$`, s.theMemeLibraryContains)
	sc.Step(`^the group chat ID is (-?\d+)$`, s.theGroupChatIDIs)
	sc.Step(`^the bot is running$`, s.theBotIsRunning)

	// HTTP steps
	sc.Step(`^I GET "([^"]*)"$`, s.iGet)
	sc.Step(`^I POST "([^"]*)"$`, s.iPost)
	sc.Step(`^I POST "([^"]*)" with a valid token$`, s.iPostWithValidToken)
	sc.Step(`^I POST "([^"]*)" with the token "([^"]*)"$`, s.iPostWithToken)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response body should be "([^"]*)"$`, s.theResponseBodyShouldBe)
	sc.Step(`^the response body should contain "([^"]*)"$`, s.theResponseBodyShouldContain)
	sc.Step(`^the JSON field "([^"]*)" should be "([^"]*)"$`, s.theJSONFieldShouldBe)

	s.registerBotSteps(sc)
}

func (s *StepsContext) beforeScenario(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
	if err := s.tc.Reset(); err != nil {
		return ctx, err
	}
	dir, err := os.MkdirTemp("", "jinbot-memes-")
	if err != nil {
		return ctx, err
	}
	s.memeDir = dir
	s.instance = nil
	s.response = nil
	s.responseBody = nil
	return ctx, nil
}

func (s *StepsContext) afterScenario(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
	if s.instance != nil {
		s.instance.Stop()
	}
	if s.memeDir != "" {
		_ = os.RemoveAll(s.memeDir)
	}
	return ctx, err
}

// bot starts the scenario's server on first use
func (s *StepsContext) bot() (*ServerInstance, error) {
	if s.instance != nil {
		return s.instance, nil
	}
	instance, err := StartServer(s.tc, s.memeDir)
	if err != nil {
		return nil, fmt.Errorf("failed to start server: %w", err)
	}
	s.instance = instance
	return instance, nil
}

// Setup steps

func (s *StepsContext) theMemeLibraryContains(name string) error {
	if err := writeMeme(s.memeDir, name); err != nil {
		return err
	}
	if s.instance != nil {
		_, err := s.instance.Bot.Library().Reload()
		return err
	}
	return nil
}

func (s *StepsContext) theBotIsRunning() error {
	_, err := s.bot()
	return err
}

// HTTP steps

func (s *StepsContext) do(method, path, token string, body []byte) error {
	instance, err := s.bot()
	if err != nil {
		return err
	}

	req, err := http.NewRequest(method, instance.ServerURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	s.response = resp
	s.responseBody, err = io.ReadAll(resp.Body)
	return err
}

func (s *StepsContext) iGet(path string) error {
	return s.do(http.MethodGet, path, "", nil)
}

func (s *StepsContext) iPost(path string) error {
	return s.do(http.MethodPost, path, "", nil)
}

func (s *StepsContext) iPostWithValidToken(path string) error {
	token, err := middleware.IssueToken([]byte(testSecret), "cucumber", time.Hour, time.Now())
	if err != nil {
		return err
	}
	return s.do(http.MethodPost, path, token, nil)
}

func (s *StepsContext) iPostWithToken(path, token string) error {
	return s.do(http.MethodPost, path, token, nil)
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(status int) error {
	if s.response == nil {
		return fmt.Errorf("no response received")
	}
	if s.response.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) theResponseBodyShouldBe(expected string) error {
	if got := strings.TrimSpace(string(s.responseBody)); got != expected {
		return fmt.Errorf("expected body %q, got %q", expected, got)
	}
	return nil
}

func (s *StepsContext) theResponseBodyShouldContain(expected string) error {
	if !strings.Contains(string(s.responseBody), expected) {
		return fmt.Errorf("expected body to contain %q, got %q", expected, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) theJSONFieldShouldBe(field, expected string) error {
	dec := json.NewDecoder(bytes.NewReader(s.responseBody))
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return fmt.Errorf("response is not a JSON object: %w", err)
	}
	value, ok := body[field]
	if !ok {
		return fmt.Errorf("field %q missing from %s", field, string(s.responseBody))
	}
	if got := fmt.Sprint(value); got != expected {
		return fmt.Errorf("expected %s to be %q, got %q", field, expected, got)
	}
	return nil
}
