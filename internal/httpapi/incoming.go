package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/ent0n29/callbridge/internal/agent"
	"github.com/ent0n29/callbridge/internal/observability"
	"github.com/ent0n29/callbridge/internal/reliability"
	"github.com/ent0n29/callbridge/internal/twiml"
	"github.com/ent0n29/callbridge/internal/ultravox"
)

const (
	providerName = "ultravox"

	msgUnidentifiedCaller = "Sorry, we could not identify your number. Please try again."
	msgConnectFailed      = "Sorry, there was an error connecting your call. Please try again later."
)

// CallArrival is the part of Twilio's voice webhook the bridge reads.
type CallArrival struct {
	From      string
	To        string
	CallSID   string
	Direction string
}

func parseCallArrival(r *http.Request) (CallArrival, error) {
	err := r.ParseForm()
	return CallArrival{
		From:      strings.TrimSpace(r.PostForm.Get("From")),
		To:        strings.TrimSpace(r.PostForm.Get("To")),
		CallSID:   strings.TrimSpace(r.PostForm.Get("CallSid")),
		Direction: strings.TrimSpace(r.PostForm.Get("Direction")),
	}, err
}

// handleIncoming answers a call-arrival webhook with exactly one TwiML
// document: a stream bridge on success, a spoken apology otherwise.
func (s *Server) handleIncoming(w http.ResponseWriter, r *http.Request) {
	arrival, err := parseCallArrival(r)

	callRef := arrival.CallSID
	if callRef == "" {
		callRef = uuid.NewString()
	}
	log := s.logger.With(
		"request_id", middleware.GetReqID(r.Context()),
		"call_ref", callRef,
	)
	if err != nil {
		log.Warn("incoming call form could not be parsed", "error", err)
	}

	if arrival.From == "" {
		log.Warn("incoming call without a From number")
		s.reply(w, log, http.StatusOK, twiml.Apology(msgUnidentifiedCaller), observability.OutcomeNoCaller)
		return
	}
	log = log.With("caller", s.redactor.Caller(arrival.From))
	log.Info("incoming call", "to", arrival.To, "direction", arrival.Direction)
	if scripted := agent.NeutralizeCaller(arrival.From); scripted != arrival.From {
		log.Warn("caller identity altered for the agent script",
			"original_runes", utf8.RuneCountInString(arrival.From),
			"scripted_runes", utf8.RuneCountInString(scripted),
		)
	}

	handle, err := s.createSession(r.Context(), log, arrival.From)
	if err != nil {
		s.reply(w, log, http.StatusInternalServerError, twiml.Apology(msgConnectFailed), observability.OutcomeProviderError)
		return
	}

	s.reply(w, log, http.StatusOK, twiml.Bridge(handle.JoinURL, s.cfg.StreamName), observability.OutcomeBridged)
}

// createSession builds the per-call config and makes the single outbound
// attempt. The wait is bounded by SessionCreateTimeout and ends early when
// the inbound request goes away.
func (s *Server) createSession(parent context.Context, log *slog.Logger, caller string) (ultravox.SessionHandle, error) {
	sessionCfg, err := agent.BuildSessionConfig(s.cfg.Agent, caller)
	if err != nil {
		log.Error("building session config failed", "error", err)
		s.metrics.ProviderErrors.WithLabelValues(providerName, string(reliability.FailureInternal)).Inc()
		return ultravox.SessionHandle{}, err
	}

	payload, err := json.MarshalIndent(sessionCfg, "", "  ")
	if err != nil {
		log.Error("encoding session config failed", "error", err)
		s.metrics.ProviderErrors.WithLabelValues(providerName, string(reliability.FailureInternal)).Inc()
		return ultravox.SessionHandle{}, err
	}
	log.Info("creating ultravox call", "config", s.redactor.Text(string(payload)))

	ctx, cancel := context.WithTimeout(parent, s.cfg.SessionCreateTimeout)
	defer cancel()

	s.metrics.InFlightSessions.Inc()
	start := time.Now()
	handle, err := s.sessions.CreateCall(ctx, sessionCfg)
	s.metrics.ObserveProviderLatency(time.Since(start))
	s.metrics.InFlightSessions.Dec()

	if err != nil {
		kind := reliability.Classify(err)
		s.metrics.ProviderErrors.WithLabelValues(providerName, string(kind)).Inc()
		attrs := []any{
			"error", err,
			"kind", string(kind),
			"transient", reliability.IsTransient(err),
			"elapsed_ms", time.Since(start).Milliseconds(),
		}
		var statusErr *ultravox.StatusError
		if errors.As(err, &statusErr) {
			attrs = append(attrs, "status", statusErr.StatusCode)
		}
		log.Error("ultravox call creation failed", attrs...)
		return ultravox.SessionHandle{}, err
	}

	log.Info("received ultravox join url", "join_url", handle.JoinURL, "ultravox_call_id", handle.CallID)
	return handle, nil
}

func (s *Server) reply(w http.ResponseWriter, log *slog.Logger, status int, resp twiml.Response, outcome string) {
	body, err := resp.Render()
	if err != nil {
		log.Error("rendering twiml failed", "error", err)
		s.metrics.WebhookRequests.WithLabelValues(observability.OutcomeRenderError).Inc()
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	s.metrics.WebhookRequests.WithLabelValues(outcome).Inc()
	log.Debug("sending twiml", "status", status, "bridge", resp.IsBridge(), "outcome", outcome)
	w.Header().Set("Content-Type", twiml.ContentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Warn("writing twiml response failed", "error", err)
	}
}
