// Package events is the remote event gateway: it translates portal actions
// into authenticated remote calls, memoizes idempotent reads within one
// request, and normalizes remote statuses into typed results and errors.
package events

import (
	"context"
	"encoding/json"
	"strconv"

	"event-portal/internal/identity"
	"event-portal/internal/remote"

	"github.com/rs/zerolog/log"
)

const (
	entityEvent       = "RemoteEvent"
	entityParticipant = "RemoteParticipant"
	entityCheckin     = "EventCheckin"
)

// User-safe fallbacks used when the remote side reports no message of its own.
const (
	msgEventUnavailable      = "The event is currently not available."
	msgFormUnavailable       = "The registration form could not be retrieved."
	msgValidationUnavailable = "Your input could not be validated. Please try again later."
	msgRegistrationFailed    = "The registration could not be submitted."
	msgUpdateFailed          = "The registration could not be updated."
	msgCancellationFailed    = "The registration could not be cancelled."
	msgCheckinUnavailable    = "Check-in verification failed."
	msgCheckinFailed         = "Check-in could not be completed."
)

type Service struct {
	caller remote.Caller
	ids    *identity.Resolver
	msgs   Messenger
}

func NewService(caller remote.Caller, ids *identity.Resolver, msgs Messenger) *Service {
	if msgs == nil {
		msgs = NopMessenger{}
	}
	return &Service{caller: caller, ids: ids, msgs: msgs}
}

// GetEvent fetches event metadata. Any fault, remote-reported or transport,
// surfaces as ErrEventNotFound with a safe message; the raw cause never
// reaches the caller.
func (s *Service) GetEvent(ctx context.Context, ref EventRef) (*Event, error) {
	call, err := s.cachedCall(ctx, entityEvent, "getsingle", ref, "", "")
	if err != nil {
		log.Warn().Err(err).Int64("event_id", ref.EventID).Msg("event lookup fault")
		return nil, newError(ErrEventNotFound, msgEventUnavailable, err)
	}
	reply := call.Reply()
	if !reply.Has("id") {
		msg := reply.ErrorMessage()
		if msg == "" {
			msg = msgEventUnavailable
		}
		return nil, newError(ErrEventNotFound, msg, nil)
	}
	return &Event{ID: toInt64(reply["id"]), Fields: reply}, nil
}

// GetForm fetches the registration form definition for a profile and
// context. The error is always generic; form retrieval has no
// message-substitution path.
func (s *Service) GetForm(ctx context.Context, ref EventRef, profile string, regCtx Context) (*FormDefinition, error) {
	if regCtx == "" {
		regCtx = ContextCreate
	}
	call, err := s.cachedCall(ctx, entityParticipant, "getform", ref, profile, regCtx)
	if err != nil {
		return nil, newError(ErrFormRetrieval, msgFormUnavailable, err)
	}
	if !call.Completed() {
		return nil, newError(ErrFormRetrieval, msgFormUnavailable, nil)
	}
	return &FormDefinition{Definition: call.Reply()}, nil
}

// ValidateRegistration submits candidate field values for server-side
// validation without persisting anything. Remote-rejected input is a normal
// outcome returned as a field-error map; only a broken call with no values
// payload is an error.
func (s *Service) ValidateRegistration(ctx context.Context, ref EventRef, profile string, regCtx Context, extra remote.Params) (ValidationErrors, error) {
	if regCtx == "" {
		regCtx = ContextCreate
	}
	params := refParams(ref)
	params["profile"] = profile
	params["context"] = string(regCtx)
	for k, v := range extra {
		params[k] = v
	}
	params, err := s.withContact(ctx, params)
	if err != nil {
		return nil, newError(ErrValidationCall, msgValidationUnavailable, err)
	}
	call, err := s.caller.ExecuteCall(ctx, entityParticipant, "validate", params, remote.CallOptions{})
	if err != nil {
		return nil, newError(ErrValidationCall, msgValidationUnavailable, err)
	}
	values := call.Reply().Values()
	if !call.Completed() && len(values) == 0 {
		return nil, newError(ErrValidationCall, msgValidationUnavailable, nil)
	}
	return ValidationErrors(values), nil
}

// CreateRegistration submits a new registration and returns the full reply.
func (s *Service) CreateRegistration(ctx context.Context, ref EventRef, profile string, params remote.Params, emitMessages bool) (remote.Reply, error) {
	return s.submitRegistration(ctx, ref, profile, params, emitMessages, "create", ErrRegistration, msgRegistrationFailed)
}

// UpdateRegistration has the same contract as CreateRegistration, operating
// on an existing registration.
func (s *Service) UpdateRegistration(ctx context.Context, ref EventRef, profile string, params remote.Params, emitMessages bool) (remote.Reply, error) {
	return s.submitRegistration(ctx, ref, profile, params, emitMessages, "update", ErrRegistrationUpdate, msgUpdateFailed)
}

// CancelRegistration cancels an existing registration. On success only the
// values sub-map is returned; callers need the cancellation outcome fields,
// not the whole envelope.
func (s *Service) CancelRegistration(ctx context.Context, ref EventRef, emitMessages bool) (map[string]any, error) {
	params, err := s.withContact(ctx, refParams(ref))
	if err != nil {
		return nil, newError(ErrCancellation, msgCancellationFailed, err)
	}
	call, err := s.caller.ExecuteCall(ctx, entityParticipant, "cancel", params, remote.CallOptions{})
	if err != nil {
		return nil, newError(ErrCancellation, msgCancellationFailed, err)
	}
	reply := call.Reply()
	if !call.Completed() {
		return nil, newError(ErrCancellation, replyMessage(reply, msgCancellationFailed), nil)
	}
	if emitMessages {
		s.emitStatusMessages(ctx, reply)
	}
	return reply.Values(), nil
}

// GetCheckinInfo fetches participant fields and the valid check-in statuses
// for a check-in token. Like GetEvent it collapses every failure into one
// safely-displayable error kind.
func (s *Service) GetCheckinInfo(ctx context.Context, checkinToken string, emitMessages bool) (*CheckinInfo, error) {
	params, err := s.withContact(ctx, remote.Params{"token": checkinToken})
	if err != nil {
		return nil, newError(ErrCheckinVerification, msgCheckinUnavailable, err)
	}
	call, err := s.caller.ExecuteCall(ctx, entityCheckin, "verify", params, remote.CallOptions{})
	if err != nil {
		log.Warn().Err(err).Msg("checkin verify fault")
		return nil, newError(ErrCheckinVerification, msgCheckinUnavailable, err)
	}
	reply := call.Reply()
	if !call.Completed() {
		return nil, newError(ErrCheckinVerification, replyMessage(reply, msgCheckinUnavailable), nil)
	}
	if emitMessages {
		s.emitStatusMessages(ctx, reply)
	}
	return &CheckinInfo{Fields: reply.Fields(), CheckinOptions: reply.CheckinOptions()}, nil
}

// CheckinParticipant confirms check-in with a chosen status. There is no
// partial-success state: a completed call is true, anything else raises.
func (s *Service) CheckinParticipant(ctx context.Context, checkinToken string, statusID int64, emitMessages bool) (bool, error) {
	params, err := s.withContact(ctx, remote.Params{"token": checkinToken, "status_id": statusID})
	if err != nil {
		return false, newError(ErrCheckin, msgCheckinFailed, err)
	}
	call, err := s.caller.ExecuteCall(ctx, entityCheckin, "confirm", params, remote.CallOptions{})
	if err != nil {
		return false, newError(ErrCheckin, msgCheckinFailed, err)
	}
	if !call.Completed() {
		return false, newError(ErrCheckin, replyMessage(call.Reply(), msgCheckinFailed), nil)
	}
	if emitMessages {
		s.emitStatusMessages(ctx, call.Reply())
	}
	return true, nil
}

func (s *Service) submitRegistration(ctx context.Context, ref EventRef, profile string, extra remote.Params, emitMessages bool, action string, kind error, fallback string) (remote.Reply, error) {
	params := refParams(ref)
	if profile != "" {
		params["profile"] = profile
	}
	for k, v := range extra {
		params[k] = v
	}
	params, err := s.withContact(ctx, params)
	if err != nil {
		return nil, newError(kind, fallback, err)
	}
	call, err := s.caller.ExecuteCall(ctx, entityParticipant, action, params, remote.CallOptions{})
	if err != nil {
		return nil, newError(kind, fallback, err)
	}
	reply := call.Reply()
	if !call.Completed() {
		return nil, newError(kind, replyMessage(reply, fallback), nil)
	}
	if emitMessages {
		s.emitStatusMessages(ctx, reply)
	}
	return reply, nil
}

// cachedCall serves GetEvent and GetForm: within one request, identical
// parameter signatures hit the remote system at most once.
func (s *Service) cachedCall(ctx context.Context, entity, action string, ref EventRef, profile string, regCtx Context) (*remote.Call, error) {
	key := cacheKey{entity: entity, action: action, eventID: ref.EventID, token: ref.Token, profile: profile, regCtx: regCtx}
	cache := replyCacheFrom(ctx)
	if cache != nil {
		if call, ok := cache.get(key); ok {
			return call, nil
		}
	}
	params := refParams(ref)
	if profile != "" {
		params["profile"] = profile
	}
	if regCtx != "" {
		params["context"] = string(regCtx)
	}
	params, err := s.withContact(ctx, params)
	if err != nil {
		return nil, err
	}
	call, err := s.caller.ExecuteCall(ctx, entity, action, params, remote.CallOptions{})
	if err != nil {
		return nil, err
	}
	if cache != nil {
		cache.put(key, call)
	}
	return call, nil
}

// withContact injects the resolved remote contact identifier. Called exactly
// once per operation, after the full parameter set is assembled. The value
// is always present, even for anonymous token flows, and never comes from
// request input.
func (s *Service) withContact(ctx context.Context, params remote.Params) (remote.Params, error) {
	contactID, err := s.ids.RemoteContactID(ctx)
	if err != nil {
		return nil, err
	}
	params["remote_contact_id"] = contactID
	return params, nil
}

func (s *Service) emitStatusMessages(ctx context.Context, reply remote.Reply) {
	for _, msg := range reply.StatusMessages() {
		s.msgs.Notify(ctx, msg)
	}
}

func refParams(ref EventRef) remote.Params {
	params := remote.Params{}
	if ref.EventID != 0 {
		params["event_id"] = ref.EventID
	}
	if ref.Token != "" {
		params["token"] = ref.Token
	}
	return params
}

func replyMessage(reply remote.Reply, fallback string) string {
	if msg := reply.ErrorMessage(); msg != "" {
		return msg
	}
	return fallback
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	}
	return 0
}
