package engine

import (
	"errors"
	"sync"
)

// ErrPropertiesClosed is returned when writing to a closed property bag.
var ErrPropertiesClosed = errors.New("engine: property bag closed")

// PropertyID identifies a well-known property.
type PropertyID int

const (
	SpeechServiceConnectionKey PropertyID = iota + 1
	SpeechServiceConnectionRegion
	SpeechServiceConnectionEndpoint
	SpeechServiceAuthorizationToken
	SpeechServiceConnectionRecoLanguage
	SpeechServiceConnectionTranslationToLanguages
	SpeechServiceConnectionTranslationVoice
	SpeechServiceResponseJSONResult
	SpeechServiceResponseJSONErrorDetails
)

var propertyNames = map[PropertyID]string{
	SpeechServiceConnectionKey:                    "SpeechServiceConnection_Key",
	SpeechServiceConnectionRegion:                 "SpeechServiceConnection_Region",
	SpeechServiceConnectionEndpoint:               "SpeechServiceConnection_Endpoint",
	SpeechServiceAuthorizationToken:               "SpeechServiceAuthorization_Token",
	SpeechServiceConnectionRecoLanguage:           "SpeechServiceConnection_RecoLanguage",
	SpeechServiceConnectionTranslationToLanguages: "SpeechServiceConnection_TranslationToLanguages",
	SpeechServiceConnectionTranslationVoice:       "SpeechServiceConnection_TranslationVoice",
	SpeechServiceResponseJSONResult:               "SpeechServiceResponse_JsonResult",
	SpeechServiceResponseJSONErrorDetails:         "SpeechServiceResponse_JsonErrorDetails",
}

func (id PropertyID) String() string {
	return propertyNames[id]
}

// ResponseProperties returns the per-result properties carrying the raw
// service response and error payload. Empty values are left out.
func ResponseProperties(resultJSON, errorJSON string) map[string]string {
	props := make(map[string]string, 2)
	if resultJSON != "" {
		props[SpeechServiceResponseJSONResult.String()] = resultJSON
	}
	if errorJSON != "" {
		props[SpeechServiceResponseJSONErrorDetails.String()] = errorJSON
	}
	return props
}

// PropertyBag stores string properties keyed by PropertyID or by name.
// Implementations must be safe for concurrent use.
type PropertyBag interface {
	GetProperty(id PropertyID) string
	SetProperty(id PropertyID, value string) error
	GetPropertyByName(name string) string
	SetPropertyByName(name, value string) error
	Close() error
}

// PropertyCollection is the in-memory PropertyBag used by the engines in
// this module.
type PropertyCollection struct {
	mu     sync.RWMutex
	values map[string]string
	closed bool
}

// NewPropertyCollection returns an empty collection.
func NewPropertyCollection() *PropertyCollection {
	return &PropertyCollection{values: make(map[string]string)}
}

// GetProperty returns the value of id, or "" when unset.
func (p *PropertyCollection) GetProperty(id PropertyID) string {
	return p.GetPropertyByName(id.String())
}

// SetProperty sets id to value.
func (p *PropertyCollection) SetProperty(id PropertyID, value string) error {
	return p.SetPropertyByName(id.String(), value)
}

// GetPropertyByName returns the value stored under name, or "" when unset.
func (p *PropertyCollection) GetPropertyByName(name string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.values[name]
}

// SetPropertyByName stores value under name.
func (p *PropertyCollection) SetPropertyByName(name, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPropertiesClosed
	}
	p.values[name] = value
	return nil
}

// Close marks the collection closed. Reads keep working; writes fail.
func (p *PropertyCollection) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *PropertyCollection) set(id PropertyID, value string) {
	if value == "" {
		return
	}
	_ = p.SetProperty(id, value)
}
