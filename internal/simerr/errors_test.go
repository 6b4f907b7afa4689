// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package simerr

import (
	"errors"
	"testing"
)

func TestNewAndKind(t *testing.T) {
	err := New(KindPacketTTLZero, "ttl reached zero")
	if GetKind(err) != KindPacketTTLZero {
		t.Fatalf("expected KindPacketTTLZero, got %v", GetKind(err))
	}
	if err.Error() != "ttl reached zero" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause, KindTapIO, "tap write failed")
	if GetKind(err) != KindTapIO {
		t.Fatalf("expected KindTapIO, got %v", GetKind(err))
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to find wrapped cause")
	}
}

func TestAttrCollectsAcrossChain(t *testing.T) {
	err := New(KindSimMTUExceeded, "mtu exceeded")
	err = Attr(err, "packet_size", 1600)
	err = Attr(err, "mtu", 1500)
	attrs := GetAttributes(err)
	if attrs["packet_size"] != 1600 || attrs["mtu"] != 1500 {
		t.Fatalf("unexpected attributes: %#v", attrs)
	}
}

func TestGetKindOnPlainError(t *testing.T) {
	if GetKind(errors.New("plain")) != KindUnknown {
		t.Fatal("expected KindUnknown for a non-simerr error")
	}
}

func TestWrapNilIsNil(t *testing.T) {
	if Wrap(nil, KindTapIO, "x") != nil {
		t.Fatal("Wrap(nil, ...) must return nil")
	}
}
