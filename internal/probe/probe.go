package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PetitePluie-255/Antigravity-Manager/internal/capture"
	"github.com/PetitePluie-255/Antigravity-Manager/internal/config"
	"github.com/PetitePluie-255/Antigravity-Manager/internal/llm"
	"github.com/PetitePluie-255/Antigravity-Manager/internal/logger"
	"github.com/PetitePluie-255/Antigravity-Manager/internal/sse"

	"github.com/sashabaranov/go-openai"

	"github.com/qmuntal/stateless"
)

// FSM States
type FSMState stateless.State

var (
	StateReadyToSend FSMState = "ReadyToSend"
	StateStreaming   FSMState = "Streaming"
	StateDone        FSMState = "Done"  // Terminal: stream fully consumed
	StateError       FSMState = "Error" // Terminal: fatal transport error
)

// FSM Triggers
type FSMTrigger stateless.Trigger

var (
	TriggerStart          FSMTrigger = "Start"
	TriggerConnected      FSMTrigger = "Connected"
	TriggerStreamFinished FSMTrigger = "StreamFinished"
	TriggerErrorOccurred  FSMTrigger = "ErrorOccurred"
)

// Probe issues one chat-completion request against the proxy and prints the
// response to out as it arrives.
type Probe struct {
	cfg        config.Config
	httpClient *http.Client
	llmClient  llm.Client
	out        io.Writer
	sessionID  string
}

// New creates a probe. llmClient is only used in blocking mode and may be nil
// otherwise. out receives the stream text; everything else goes through the
// logger.
func New(cfg config.Config, llmClient llm.Client, out io.Writer, sessionID string) *Probe {
	return &Probe{
		cfg: cfg,
		// No client timeout: the stream stays open for as long as the model
		// keeps generating. The context carries any deadline.
		httpClient: &http.Client{},
		llmClient:  llmClient,
		out:        out,
		sessionID:  sessionID,
	}
}

// Run executes one probe round-trip. Parse errors inside the stream are
// reported to out and skipped; transport errors are returned.
func (p *Probe) Run(ctx context.Context) error {
	if p.cfg.Probe.Blocking {
		return p.runBlocking(ctx)
	}
	return p.runStreaming(ctx)
}

// runStreaming drives the send/consume lifecycle through an FSM.
// Transitions:
//
//	ReadyToSend -- Connected --> Streaming -- StreamFinished --> Done
//	     \-- ErrorOccurred --> Error <-- ErrorOccurred --/
func (p *Probe) runStreaming(ctx context.Context) error {
	type fsmContext struct {
		resp       *http.Response
		framesSeen int
		lastError  error
	}
	fsmCtx := &fsmContext{}

	fsm := stateless.NewStateMachine(StateReadyToSend)

	fsm.Configure(StateReadyToSend).
		PermitReentry(TriggerStart).
		OnEntry(func(ctx context.Context, args ...any) error {
			logger.L.Debug("FSM: Entering StateReadyToSend")
			resp, err := p.send(ctx)
			if err != nil {
				fsmCtx.lastError = err
				return fsm.FireCtx(ctx, TriggerErrorOccurred)
			}
			fsmCtx.resp = resp
			return fsm.FireCtx(ctx, TriggerConnected)
		}).
		Permit(TriggerConnected, StateStreaming).
		Permit(TriggerErrorOccurred, StateError)

	fsm.Configure(StateStreaming).
		OnEntry(func(ctx context.Context, args ...any) error {
			logger.L.Debug("FSM: Entering StateStreaming")
			defer fsmCtx.resp.Body.Close()
			n, err := p.consume(fsmCtx.resp.Body)
			fsmCtx.framesSeen = n
			if err != nil {
				fsmCtx.lastError = err
				return fsm.FireCtx(ctx, TriggerErrorOccurred)
			}
			return fsm.FireCtx(ctx, TriggerStreamFinished)
		}).
		Permit(TriggerStreamFinished, StateDone).
		Permit(TriggerErrorOccurred, StateError)

	fsm.Configure(StateDone).
		OnEntry(func(ctx context.Context, args ...any) error {
			logger.L.Info("stream consumed", "frames", fsmCtx.framesSeen, "session", p.sessionID)
			return nil
		})

	fsm.Configure(StateError).
		OnEntry(func(ctx context.Context, args ...any) error {
			if fsmCtx.lastError == nil {
				fsmCtx.lastError = errors.New("probe reached error state without a specific error")
			}
			return nil
		})

	if err := fsm.FireCtx(ctx, TriggerStart); err != nil {
		logger.L.Warn("FSM initial fire error", "error", err)
	}

	currentState, err := fsm.State(ctx)
	if err != nil {
		return fmt.Errorf("FSM internal error: %w", err)
	}
	if currentState == StateError {
		return fsmCtx.lastError
	}
	if currentState != StateDone {
		return fmt.Errorf("probe ended in an unexpected state: %v", currentState)
	}
	return nil
}

// send issues the streaming chat-completion request and checks the status.
func (p *Probe) send(ctx context.Context) (*http.Response, error) {
	req := openai.ChatCompletionRequest{
		Model: p.cfg.LLM.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: p.cfg.Probe.Prompt},
		},
		Stream: true,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(p.cfg.LLM.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if p.cfg.LLM.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.cfg.LLM.APIKey)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("proxy %d: %s", resp.StatusCode, string(raw))
	}
	return resp, nil
}

// consume reads data frames in arrival order and prints them. It returns on
// the [DONE] sentinel without draining whatever the server sends after it.
func (p *Probe) consume(body io.Reader) (int, error) {
	scanner := sse.NewScanner(body)
	seq := 0
	for {
		frame, ok := scanner.Next()
		if !ok {
			break
		}
		p.record(seq, frame.Payload)
		seq++

		if frame.Done {
			fmt.Fprint(p.out, "\n[STREAM DONE]\n")
			return seq, nil
		}

		var chunk openai.ChatCompletionStreamResponse
		if err := json.Unmarshal([]byte(frame.Payload), &chunk); err != nil {
			fmt.Fprintf(p.out, "\nError parsing: %s - %v\n", frame.Raw, err)
			continue
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.ReasoningContent != "" {
				fmt.Fprintf(p.out, "\n[REASONING]: %s\n", choice.Delta.ReasoningContent)
			}
			// No trailing newline so consecutive fragments concatenate.
			if choice.Delta.Content != "" {
				fmt.Fprintf(p.out, "[CONTENT]: %s", choice.Delta.Content)
			}
		}
	}
	return seq, scanner.Err()
}

// runBlocking sends the same request with stream disabled and prints the
// final message once. Useful to compare against the streamed output.
func (p *Probe) runBlocking(ctx context.Context) error {
	resp, err := p.llmClient.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.cfg.LLM.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: p.cfg.Probe.Prompt},
		},
	})
	if err != nil {
		return fmt.Errorf("chat completion: %w", err)
	}
	for _, choice := range resp.Choices {
		if choice.Message.ReasoningContent != "" {
			fmt.Fprintf(p.out, "\n[REASONING]: %s\n", choice.Message.ReasoningContent)
		}
		if choice.Message.Content != "" {
			fmt.Fprintf(p.out, "[CONTENT]: %s\n", choice.Message.Content)
		}
	}
	return nil
}

func (p *Probe) record(seq int, payload string) {
	if !p.cfg.Capture.Enabled {
		return
	}
	capture.Save(capture.Frame{
		SessionID: p.sessionID,
		Seq:       seq,
		Payload:   payload,
		CreatedAt: time.Now(),
	})
}
