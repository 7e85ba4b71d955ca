// Package errs provides structured error types shared across the strategy runtime.
package errs

import (
	"strconv"
	"strings"
)

// Code identifies a failure category in the trading session lifecycle.
type Code string

const (
	// CodeGatewayNotReady indicates the FIX gateway cannot serve the session.
	CodeGatewayNotReady Code = "gateway_not_ready"
	// CodeSessionReject indicates a session-level FIX reject.
	CodeSessionReject Code = "session_reject"
	// CodeBusinessReject indicates an application-level FIX reject.
	CodeBusinessReject Code = "business_reject"
	// CodeMarketDataReject indicates a refused market data request.
	CodeMarketDataReject Code = "market_data_reject"
	// CodeOrderReject indicates a rejected order.
	CodeOrderReject Code = "order_reject"
	// CodeMassCancelReject indicates a rejected order mass cancel request.
	CodeMassCancelReject Code = "mass_cancel_reject"
	// CodeRateLimited indicates the request exceeded rate limits.
	CodeRateLimited Code = "rate_limited"
	// CodeInvalid indicates invalid input provided by the caller.
	CodeInvalid Code = "invalid_request"
	// CodeTimeout indicates a deadline expired before completion.
	CodeTimeout Code = "timeout"
	// CodeInternal indicates an unexpected fault inside the runtime.
	CodeInternal Code = "internal"
)

// E captures structured error information produced across the runtime.
type E struct {
	Venue      string
	Code       Code
	RefMsgType string
	RefSeqNum  int
	Message    string
	Text       string

	cause error
}

// Option configures an error envelope.
type Option func(*E)

// New constructs an error envelope for the venue and failure code.
func New(venue string, code Code, opts ...Option) *E {
	e := &E{
		Venue: strings.TrimSpace(venue),
		Code:  code,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// WithMessage attaches a human-readable message to the error.
func WithMessage(message string) Option {
	trimmed := strings.TrimSpace(message)
	return func(e *E) {
		e.Message = trimmed
	}
}

// WithText captures the raw text field carried on the FIX message.
func WithText(text string) Option {
	return func(e *E) {
		e.Text = text
	}
}

// WithRefMsgType records the FIX message type the failure refers to.
func WithRefMsgType(msgType string) Option {
	trimmed := strings.TrimSpace(msgType)
	return func(e *E) {
		e.RefMsgType = trimmed
	}
}

// WithRefSeqNum records the FIX sequence number the failure refers to.
func WithRefSeqNum(seq int) Option {
	return func(e *E) {
		e.RefSeqNum = seq
	}
}

// WithCause sets the underlying cause error.
func WithCause(err error) Option {
	return func(e *E) {
		e.cause = err
	}
}

func (e *E) Error() string {
	if e == nil {
		return "<nil>"
	}
	var parts []string

	venue := strings.TrimSpace(e.Venue)
	if venue == "" {
		venue = "unknown"
	}
	parts = append(parts, "venue="+venue)

	code := strings.TrimSpace(string(e.Code))
	if code == "" {
		code = "unknown"
	}
	parts = append(parts, "code="+code)

	if e.RefMsgType != "" {
		parts = append(parts, "ref_msg_type="+strconv.Quote(e.RefMsgType))
	}
	if e.RefSeqNum > 0 {
		parts = append(parts, "ref_seq_num="+strconv.Itoa(e.RefSeqNum))
	}
	if e.Message != "" {
		parts = append(parts, "message="+strconv.Quote(e.Message))
	}
	if e.Text != "" {
		parts = append(parts, "text="+strconv.Quote(e.Text))
	}
	if e.cause != nil {
		parts = append(parts, "cause="+strconv.Quote(e.cause.Error()))
	}

	return strings.Join(parts, " ")
}

func (e *E) Unwrap() error { return e.cause }

// Is reports whether target is an *E with the same code, enabling
// errors.Is comparisons against sentinel envelopes.
func (e *E) Is(target error) bool {
	other, ok := target.(*E)
	if !ok || e == nil || other == nil {
		return false
	}
	return e.Code == other.Code
}
