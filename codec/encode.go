// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import (
	"bufio"
	"bytes"
	"errors"
	"io"

	"codello.dev/asn1view"
	"codello.dev/asn1view/tlv"
)

var (
	errExtraData   = errors.New("extra data after value")
	errTooLarge    = errors.New("encoding too large")
	errShortLength = errors.New("content shorter than its length")
	errLongLength  = errors.New("write exceeds length")
)

// EncodeError is returned by the serialization functions if a value cannot be
// encoded, for example because it is outside the value range of its ASN.1
// type.
type EncodeError struct {
	// Tag of the value that could not be encoded.
	Tag asn1view.Tag
	Err error
}

// encodeError returns an *EncodeError for tag with the detail message msg.
func encodeError(tag asn1view.Tag, msg string) *EncodeError {
	return &EncodeError{Tag: tag, Err: errors.New(msg)}
}

func (e *EncodeError) Error() string {
	return "codec: encode error for " + e.Tag.String() + ": " + e.Err.Error()
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// header returns the header of the encoding of v with content length n.
func header[T any](c Codec[T], v T, n int) tlv.Header {
	h := tlv.Header{Tag: c.Tag(), Constructed: c.Constructed(), Length: n}
	if t, ok := c.(valueTagger[T]); ok {
		h.Tag, h.Constructed = t.valueTag(v)
	}
	return h
}

// EncodedLen returns the number of bytes in the DER encoding of v, including
// the header.
func EncodedLen[T any](c Codec[T], v T) (int, error) {
	n, err := c.EncodedLen(v)
	if err != nil {
		return 0, err
	}
	h := header(c, v, n)
	l := tlv.CombinedLength(h.EncodedLen(), n)
	if l == tlv.LengthIndefinite {
		return 0, &EncodeError{h.Tag, errTooLarge}
	}
	return l, nil
}

// Marshal returns the DER encoding of v.
func Marshal[T any](c Codec[T], v T) ([]byte, error) {
	n, err := EncodedLen(c, v)
	if err != nil {
		return nil, err
	}
	buf := bytes.NewBuffer(make([]byte, 0, n))
	if err = writeValue(buf, c, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes the DER encoding of v to w. It returns the number of bytes
// written and the first error encountered. The header is written before the
// content, so on error w may have received a partial encoding.
func Write[T any](w io.Writer, c Codec[T], v T) (int64, error) {
	cw := &countWriter{W: w}
	var bw Writer = cw
	var flush func() error
	if _, ok := w.(io.ByteWriter); !ok {
		b := bufio.NewWriter(cw)
		bw, flush = b, b.Flush
	}
	err := writeValue(bw, c, v)
	if flush != nil && err == nil {
		if err = flush(); err != nil {
			err = &EncodeError{header(c, v, 0).Tag, err}
		}
	}
	return cw.N, err
}

// writeValue writes the header and content of v to w. The content is written
// through a writer that ensures that exactly the announced number of bytes is
// written.
func writeValue[T any](w Writer, c Codec[T], v T) error {
	n, err := c.EncodedLen(v)
	if err != nil {
		return err
	}
	h := header(c, v, n)
	if _, err = h.WriteTo(w); err != nil {
		return &EncodeError{h.Tag, err}
	}
	lw := &limitWriter{W: w, N: n}
	if err = c.EncodeContent(lw, v); err != nil {
		var e *EncodeError
		if !errors.As(err, &e) {
			err = &EncodeError{h.Tag, err}
		}
		return err
	}
	if lw.N != 0 {
		return &EncodeError{h.Tag, errShortLength}
	}
	return nil
}

// addLen adds the length of an element to a content length.
func addLen(tag asn1view.Tag, sum, n int) (int, error) {
	l := tlv.CombinedLength(sum, n)
	if l == tlv.LengthIndefinite {
		return 0, &EncodeError{tag, errTooLarge}
	}
	return l, nil
}

// limitWriter writes at most N bytes to W. Writes beyond N fail.
type limitWriter struct {
	W Writer
	N int // remaining bytes
}

func (w *limitWriter) Write(p []byte) (n int, err error) {
	if len(p) > w.N {
		p = p[:w.N]
		err = errLongLength
	}
	n, werr := w.W.Write(p)
	w.N -= n
	if werr != nil {
		return n, werr
	}
	return n, err
}

func (w *limitWriter) WriteByte(c byte) error {
	if w.N <= 0 {
		return errLongLength
	}
	if err := w.W.WriteByte(c); err != nil {
		return err
	}
	w.N--
	return nil
}

// countWriter counts the bytes written to W.
type countWriter struct {
	W io.Writer
	N int64
}

func (w *countWriter) Write(p []byte) (int, error) {
	n, err := w.W.Write(p)
	w.N += int64(n)
	return n, err
}

func (w *countWriter) WriteByte(c byte) error {
	if bw, ok := w.W.(io.ByteWriter); ok {
		if err := bw.WriteByte(c); err != nil {
			return err
		}
		w.N++
		return nil
	}
	_, err := w.Write([]byte{c})
	return err
}
