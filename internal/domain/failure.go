package domain

import "fmt"

// FailureKind classifies why a single provider quote did not produce a price.
type FailureKind string

const (
	FailureNone         FailureKind = ""
	FailureNoOfferFound FailureKind = "no_offer_found"
	FailureTimeout      FailureKind = "timeout"
	FailureNetwork      FailureKind = "network_error"
	FailureProvider     FailureKind = "provider_error"
	FailureUnexpected   FailureKind = "unexpected_error"
)

// ProviderFailure is the only error type a PriceProvider returns.
// It is always recovered by the sweep and downgraded to an unavailable outcome.
type ProviderFailure struct {
	Kind       FailureKind
	StatusCode int // set for FailureProvider
	Message    string
	Err        error
}

func (f *ProviderFailure) Error() string {
	switch f.Kind {
	case FailureProvider:
		return fmt.Sprintf("provider error [%d]: %s", f.StatusCode, f.Message)
	case FailureNoOfferFound:
		return "no offer found"
	default:
		if f.Message != "" {
			return fmt.Sprintf("%s: %s", f.Kind, f.Message)
		}
		return string(f.Kind)
	}
}

func (f *ProviderFailure) Unwrap() error { return f.Err }

func NoOfferFound() *ProviderFailure {
	return &ProviderFailure{Kind: FailureNoOfferFound}
}

func TimeoutFailure(err error) *ProviderFailure {
	return &ProviderFailure{Kind: FailureTimeout, Message: errMessage(err), Err: err}
}

func NetworkFailure(err error) *ProviderFailure {
	return &ProviderFailure{Kind: FailureNetwork, Message: errMessage(err), Err: err}
}

func ProviderRejected(statusCode int, message string) *ProviderFailure {
	return &ProviderFailure{Kind: FailureProvider, StatusCode: statusCode, Message: message}
}

func UnexpectedFailure(err error) *ProviderFailure {
	return &ProviderFailure{Kind: FailureUnexpected, Message: errMessage(err), Err: err}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
