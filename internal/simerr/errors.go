// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package simerr defines the Kind-tagged error taxonomy shared by every
// core package of the fabric simulator (see spec.md §7).
package simerr

import (
	"errors"
	"fmt"
)

// Kind categorizes a simulator error so callers can branch on it without
// string matching.
type Kind int

const (
	KindUnknown Kind = iota

	// ParseError kinds (§4.1, §7)
	KindParseTooShort
	KindParseUnsupportedVersion
	KindParseInvalidIHL
	KindParseHopByHopTruncated

	// PacketError kinds
	KindPacketTTLZero

	// SimulationError kinds (§4.5)
	KindSimMTUExceeded
	KindSimPacketLost
	KindSimOther

	// ConfigError kinds (§6, §7)
	KindConfigParseError
	KindConfigDuplicateLink
	KindConfigUnknownRouter
	KindConfigMissingPacketFile
	KindConfigInvalidInjection
	KindConfigInvalidAddress
	KindConfigInvalidRouterID

	// TapError kinds (§4.8, §7)
	KindTapPermissionDenied
	KindTapIO
)

func (k Kind) String() string {
	switch k {
	case KindParseTooShort:
		return "parse_too_short"
	case KindParseUnsupportedVersion:
		return "parse_unsupported_version"
	case KindParseInvalidIHL:
		return "parse_invalid_ihl"
	case KindParseHopByHopTruncated:
		return "parse_hop_by_hop_truncated"
	case KindPacketTTLZero:
		return "packet_ttl_zero"
	case KindSimMTUExceeded:
		return "sim_mtu_exceeded"
	case KindSimPacketLost:
		return "sim_packet_lost"
	case KindSimOther:
		return "sim_other"
	case KindConfigParseError:
		return "config_parse_error"
	case KindConfigDuplicateLink:
		return "config_duplicate_link"
	case KindConfigUnknownRouter:
		return "config_unknown_router"
	case KindConfigMissingPacketFile:
		return "config_missing_packet_file"
	case KindConfigInvalidInjection:
		return "config_invalid_injection"
	case KindConfigInvalidAddress:
		return "config_invalid_address"
	case KindConfigInvalidRouterID:
		return "config_invalid_router_id"
	case KindTapPermissionDenied:
		return "tap_permission_denied"
	case KindTapIO:
		return "tap_io"
	default:
		return "unknown"
	}
}

// Error is a structured error carrying a Kind, a human message, an
// optional wrapped cause, and free-form attributes (e.g. packet_size/mtu
// for KindSimMTUExceeded).
type Error struct {
	Kind       Kind
	Message    string
	Underlying error
	Attributes map[string]any
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Underlying)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// New creates a new Error of the given Kind.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// Errorf creates a new Error of the given Kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err as a new Error of the given Kind. Returns nil if err is nil.
func Wrap(err error, kind Kind, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: msg, Underlying: err}
}

// Attr attaches an attribute key/value, wrapping err as KindUnknown first
// if it is not already a *Error.
func Attr(err error, key string, val any) error {
	if err == nil {
		return nil
	}
	var e *Error
	if !errors.As(err, &e) {
		e = &Error{Kind: KindUnknown, Message: err.Error(), Underlying: err}
	}
	if e.Attributes == nil {
		e.Attributes = make(map[string]any)
	}
	e.Attributes[key] = val
	return e
}

// GetKind returns the Kind of err, or KindUnknown if it is not a *Error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// GetAttributes collects attributes from err and its wrapped chain.
func GetAttributes(err error) map[string]any {
	attrs := make(map[string]any)
	var e *Error
	cur := err
	for cur != nil {
		if errors.As(cur, &e) {
			for k, v := range e.Attributes {
				if _, ok := attrs[k]; !ok {
					attrs[k] = v
				}
			}
			cur = e.Underlying
		} else {
			break
		}
	}
	return attrs
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain matching target's type.
func As(err error, target any) bool { return errors.As(err, target) }
