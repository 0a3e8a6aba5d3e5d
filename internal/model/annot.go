package model

import (
	"net/url"
	"strconv"
	"strings"
)

// The annotation column is either a plain label or a structured
// "key=value;key2=value2" payload. Every kind that carries a structured
// payload has a typed struct below with its encode/decode pair; nothing else
// in the repo parses annotations by hand.

// EncodeFields encodes ordered key/value pairs as "k=v;k2=v2". Values are
// query-escaped so they may contain '=', ';' and spaces.
func EncodeFields(pairs ...[2]string) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p[0]+"="+url.QueryEscape(p[1]))
	}
	return strings.Join(parts, ";")
}

// ParseFields decodes a "k=v;k2=v2" annotation into a map. Malformed
// segments are skipped rather than failing the whole parse: historical
// events must stay readable.
func ParseFields(s string) map[string]string {
	fields := make(map[string]string)
	for _, part := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(part, "=")
		if !ok || k == "" {
			continue
		}
		if dec, err := url.QueryUnescape(v); err == nil {
			v = dec
		}
		fields[k] = v
	}
	return fields
}

func fieldInt64(fields map[string]string, key string) int64 {
	n, _ := strconv.ParseInt(fields[key], 10, 64)
	return n
}

// OfferKind distinguishes a generic item offer from a perk-backed one.
type OfferKind string

const (
	OfferItem OfferKind = "item"
	OfferPerk OfferKind = "perk"
)

// OfferAnnotation is the structured payload of an offer-create event.
// Price is the event amount, seller the event subject.
type OfferAnnotation struct {
	Kind OfferKind // item or perk
	Item string    // item description or perk code
	Ref  string    // movement reference code
}

func (a OfferAnnotation) Encode() string {
	return EncodeFields(
		[2]string{"kind", string(a.Kind)},
		[2]string{"item", a.Item},
		[2]string{"ref", a.Ref},
	)
}

func ParseOfferAnnotation(s string) OfferAnnotation {
	f := ParseFields(s)
	return OfferAnnotation{
		Kind: OfferKind(f["kind"]),
		Item: f["item"],
		Ref:  f["ref"],
	}
}

// SoldAnnotation is the structured payload of an offer-sold event. The sold
// offer is referenced here, not in a dedicated column; the active-offer
// derivation depends on this encoding.
type SoldAnnotation struct {
	Offer int64 // offer-create event ID
	Buyer int64
	Ref   string
}

func (a SoldAnnotation) Encode() string {
	return EncodeFields(
		[2]string{"offer", strconv.FormatInt(a.Offer, 10)},
		[2]string{"buyer", strconv.FormatInt(a.Buyer, 10)},
		[2]string{"ref", a.Ref},
	)
}

func ParseSoldAnnotation(s string) SoldAnnotation {
	f := ParseFields(s)
	return SoldAnnotation{
		Offer: fieldInt64(f, "offer"),
		Buyer: fieldInt64(f, "buyer"),
		Ref:   f["ref"],
	}
}

// EscrowAnnotation is the structured payload of perk-escrow-open and
// perk-escrow-close events.
type EscrowAnnotation struct {
	Code   string // perk code, alias-normalized before encoding
	Offer  int64  // backing offer ID
	Reason string // close reason; empty on open
}

func (a EscrowAnnotation) Encode() string {
	return EncodeFields(
		[2]string{"code", a.Code},
		[2]string{"offer", strconv.FormatInt(a.Offer, 10)},
		[2]string{"reason", a.Reason},
	)
}

func ParseEscrowAnnotation(s string) EscrowAnnotation {
	f := ParseFields(s)
	return EscrowAnnotation{
		Code:   f["code"],
		Offer:  fieldInt64(f, "offer"),
		Reason: f["reason"],
	}
}

// RoleAnnotation is the structured payload of a role-set event. An empty
// Name clears the role. Until is a unix timestamp after which the role reads
// as expired; zero means no expiry. Image is an optional picture reference
// shown alongside the role.
type RoleAnnotation struct {
	Name  string
	Desc  string
	Until int64
	Image string
}

func (a RoleAnnotation) Encode() string {
	pairs := [][2]string{
		{"name", a.Name},
		{"desc", a.Desc},
	}
	if a.Until > 0 {
		pairs = append(pairs, [2]string{"until", strconv.FormatInt(a.Until, 10)})
	}
	if a.Image != "" {
		pairs = append(pairs, [2]string{"image", a.Image})
	}
	return EncodeFields(pairs...)
}

func ParseRoleAnnotation(s string) RoleAnnotation {
	f := ParseFields(s)
	return RoleAnnotation{
		Name:  f["name"],
		Desc:  f["desc"],
		Until: fieldInt64(f, "until"),
		Image: f["image"],
	}
}

// DedupAnnotation keys a dedup-marker event by chat and message ID.
type DedupAnnotation struct {
	Chat int64
	Msg  int64
}

func (a DedupAnnotation) Encode() string {
	return EncodeFields(
		[2]string{"chat", strconv.FormatInt(a.Chat, 10)},
		[2]string{"msg", strconv.FormatInt(a.Msg, 10)},
	)
}

// DepositAnnotation is the structured payload of a cell-deposit event.
// The event amount is the gross deposit; the fee leg is its own cell-fee
// event so that fee income stays a plain sum.
type DepositAnnotation struct {
	Fee int64
	Ref string
}

func (a DepositAnnotation) Encode() string {
	return EncodeFields(
		[2]string{"fee", strconv.FormatInt(a.Fee, 10)},
		[2]string{"ref", a.Ref},
	)
}

func ParseDepositAnnotation(s string) DepositAnnotation {
	f := ParseFields(s)
	return DepositAnnotation{Fee: fieldInt64(f, "fee"), Ref: f["ref"]}
}

// CodewordAnnotation is the structured payload of codeword-set and
// codeword-win events. The prize is the event amount.
type CodewordAnnotation struct {
	Word string
}

func (a CodewordAnnotation) Encode() string {
	return EncodeFields([2]string{"word", strings.ToLower(strings.TrimSpace(a.Word))})
}

func ParseCodewordAnnotation(s string) CodewordAnnotation {
	return CodewordAnnotation{Word: ParseFields(s)["word"]}
}
