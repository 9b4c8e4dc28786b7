// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import (
	"time"

	"codello.dev/asn1view"
	"codello.dev/asn1view/tlv"
)

//region [UNIVERSAL 23] UTCTime

// UTCTime is the codec for the ASN.1 UTCTime type. Under BER seconds are
// optional and the zone may be given as an offset. DER requires the format
// YYMMDDhhmmssZ. Values are always encoded in that format.
var UTCTime Codec[asn1view.UTCTime] = utcTimeCodec{primitive(asn1view.TagUTCTime)}

type utcTimeCodec struct{ primitive }

func (utcTimeCodec) Decode(a tlv.Any) (asn1view.UTCTime, error) {
	b, err := stringContent(a)
	if err != nil {
		return asn1view.UTCTime{}, err
	}
	t, ok := parseUTCTime(string(b))
	if !ok {
		return asn1view.UTCTime{}, a.Errorf(tlv.InvalidValueEncoding, "invalid UTCTime %q", b)
	}
	return asn1view.UTCTime(t), nil
}

func parseUTCTime(s string) (time.Time, bool) {
	if len(s) < 11 || len(s) > 17 {
		return time.Time{}, false
	}
	year := atoiN[int](s, 2)
	month := atoiN[time.Month](s[2:], 2)
	day := atoiN[int](s[4:], 2)
	hour := atoiN[int](s[6:], 2)
	minute := atoiN[int](s[8:], 2)
	s = s[10:]
	second := atoiN[int](s, 2)
	if second >= 0 {
		s = s[2:]
	} else {
		second = 0
	}
	loc := parseLocation(s)
	if loc == nil || year < 0 {
		return time.Time{}, false
	}
	// UTCTime only encodes times prior to 2050. See https://tools.ietf.org/html/rfc5280#section-4.1.2.5.1
	if year <= 49 {
		year += 2000
	} else {
		year += 1900
	}
	ret := time.Date(year, month, day, hour, minute, second, 0, loc)
	if ret.Year() != year || ret.Month() != month || ret.Day() != day || ret.Hour() != hour || ret.Minute() != minute || ret.Second() != second {
		return time.Time{}, false
	}
	return ret, true
}

func (c utcTimeCodec) Check(a tlv.Any) error {
	if a.Constructed {
		return a.Errorf(tlv.NotCanonical, "constructed string")
	}
	t, err := c.Decode(a)
	if err != nil {
		return err
	}
	if asn1view.UTCTime(time.Time(t).UTC()).String() != string(a.Content) {
		return a.Errorf(tlv.NotCanonical, "UTCTime %q not in canonical form", a.Content)
	}
	return nil
}

// utc returns v in the UTC zone.
func (c utcTimeCodec) utc(v asn1view.UTCTime) (string, error) {
	u := asn1view.UTCTime(time.Time(v).UTC())
	if !u.IsValid() {
		return "", encodeError(c.Tag(), "cannot represent time as UTCTime")
	}
	return u.String(), nil
}

func (c utcTimeCodec) EncodedLen(v asn1view.UTCTime) (int, error) {
	s, err := c.utc(v)
	return len(s), err
}

func (c utcTimeCodec) EncodeContent(w Writer, v asn1view.UTCTime) error {
	s, err := c.utc(v)
	if err == nil {
		_, err = w.Write([]byte(s))
	}
	return err
}

// parseLocation parses the zone suffix of a time: Z or an offset +hhmm/-hhmm.
func parseLocation(s string) *time.Location {
	if len(s) == 1 && s[0] == 'Z' {
		return time.UTC
	}
	if len(s) != 5 {
		return nil
	}
	if s[0] != '+' && s[0] != '-' {
		return nil
	}
	mul := 44 - int(s[0]) // '+' is 43, '-' is 45
	locHour := atoiN[int](s[1:], 2)
	locMinute := atoiN[int](s[3:], 2)
	if locHour < 0 || locMinute < 0 {
		return nil
	}
	return time.FixedZone("", mul*(locHour*3600+locMinute*60))
}

// atoiN parses exactly n decimal digits at the beginning of s. It returns -1
// if s does not start with n digits.
func atoiN[T ~int | ~int64](s string, n int) (i T) {
	if len(s) < n {
		return -1
	}
	for j := 0; j < n; j++ {
		if s[j] < '0' || '9' < s[j] {
			return -1
		}
		i = i*10 + T(s[j]-'0')
	}
	return i
}

//endregion

//region [UNIVERSAL 24] GeneralizedTime

// GeneralizedTime is the codec for the ASN.1 GeneralizedTime type. Under BER
// minutes and seconds are optional, fractions may use a comma and a missing
// zone means local time. DER requires the format YYYYMMDDhhmmss[.f*]Z without
// trailing zeros in the fraction. Values are always encoded in that format.
// Sub-nanosecond precision is discarded.
var GeneralizedTime Codec[asn1view.GeneralizedTime] = generalizedTimeCodec{primitive(asn1view.TagGeneralizedTime)}

type generalizedTimeCodec struct{ primitive }

func (generalizedTimeCodec) Decode(a tlv.Any) (asn1view.GeneralizedTime, error) {
	b, err := stringContent(a)
	if err != nil {
		return asn1view.GeneralizedTime{}, err
	}
	t, ok := parseGeneralizedTime(string(b))
	if !ok {
		return asn1view.GeneralizedTime{}, a.Errorf(tlv.InvalidValueEncoding, "invalid GeneralizedTime %q", b)
	}
	return asn1view.GeneralizedTime(t), nil
}

func parseGeneralizedTime(s string) (time.Time, bool) {
	if len(s) < 10 {
		return time.Time{}, false
	}
	year := atoiN[int](s, 4)
	month := atoiN[time.Month](s[4:], 2)
	day := atoiN[int](s[6:], 2)
	hour := atoiN[time.Duration](s[8:], 2)
	if year < 0 || hour < 0 || 23 < hour {
		return time.Time{}, false
	}
	s = s[10:]
	dur := hour * time.Hour
	unit := time.Hour // unit for fractional time
	if len(s) >= 2 && '0' <= s[0] && s[0] <= '9' {
		minute := atoiN[time.Duration](s, 2)
		if minute < 0 || 59 < minute {
			return time.Time{}, false
		}
		dur += minute * time.Minute
		unit = time.Minute
		s = s[2:]
	}
	if unit == time.Minute && len(s) >= 2 && '0' <= s[0] && s[0] <= '9' {
		second := atoiN[time.Duration](s, 2)
		if second < 0 || 59 < second {
			return time.Time{}, false
		}
		dur += second * time.Second
		unit = time.Second
		s = s[2:]
	}
	if len(s) > 0 && (s[0] == '.' || s[0] == ',') {
		i := 1
		for ; i < len(s) && '0' <= s[i] && s[i] <= '9'; i++ {
			unit /= 10
			dur += time.Duration(s[i]-'0') * unit
		}
		if i == 1 {
			return time.Time{}, false
		}
		s = s[i:]
	}
	loc := time.Local
	if len(s) > 0 {
		if loc = parseLocation(s); loc == nil {
			return time.Time{}, false
		}
	}
	ret := time.Date(year, month, day, 0, 0, 0, 0, loc).Add(dur)
	if ret.Year() != year || ret.Month() != month || ret.Day() != day {
		return time.Time{}, false
	}
	return ret, true
}

func (c generalizedTimeCodec) Check(a tlv.Any) error {
	if a.Constructed {
		return a.Errorf(tlv.NotCanonical, "constructed string")
	}
	t, err := c.Decode(a)
	if err != nil {
		return err
	}
	if asn1view.GeneralizedTime(time.Time(t).UTC()).String() != string(a.Content) {
		return a.Errorf(tlv.NotCanonical, "GeneralizedTime %q not in canonical form", a.Content)
	}
	return nil
}

// utc returns v in the UTC zone. The year range applies to the UTC value.
func (c generalizedTimeCodec) utc(v asn1view.GeneralizedTime) (string, error) {
	u := asn1view.GeneralizedTime(time.Time(v).UTC())
	if !u.IsValid() {
		return "", encodeError(c.Tag(), "cannot represent time as GeneralizedTime")
	}
	return u.String(), nil
}

func (c generalizedTimeCodec) EncodedLen(v asn1view.GeneralizedTime) (int, error) {
	s, err := c.utc(v)
	return len(s), err
}

func (c generalizedTimeCodec) EncodeContent(w Writer, v asn1view.GeneralizedTime) error {
	s, err := c.utc(v)
	if err == nil {
		_, err = w.Write([]byte(s))
	}
	return err
}

//endregion
