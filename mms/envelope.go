// Package mms builds and decodes the MMS PDUs exchanged after the
// one-time Initiate handshake: GetRCBValues/SetRCBValues confirmed
// requests and informationReport unconfirmed PDUs, all riding directly
// over COTP Data TPDUs without re-wrapping in session/presentation/ACSE.
package mms

import "github.com/slonegd/go61850report/ber"

// Prefix is the constant session/presentation selector prefix every
// post-Initiate MMS PDU on the wire begins with.
var Prefix = []byte{0x01, 0x00, 0x01, 0x00}

// BuildConfirmedRequest wraps opBody (a GetRCBValues/SetRCBValues
// operation body, itself already tagged a4/a5) in the confirmed-request
// envelope and prefixes it with Prefix: `01 00 01 00 61 <len> 30 <len>
// 02 01 03 a0 <len> 02 02 <invoke_hi> <invoke_lo> <op>`.
func BuildConfirmedRequest(invokeID uint16, opBody []byte) []byte {
	invokeIDField := []byte{0x02, 0x02, byte(invokeID >> 8), byte(invokeID)}
	confirmedRequest := ber.Wrap(0xA0, append(invokeIDField, opBody...))
	sequence := append([]byte{0x02, 0x01, 0x03}, confirmedRequest...)
	pdu := ber.Wrap(0x61, ber.Wrap(0x30, sequence))
	return append(append([]byte(nil), Prefix...), pdu...)
}

// nameBlock builds the shared object-name substructure reused by both
// GetRCBValues and SetRCBValues: `30 <len> a0 <len> a1 <len> (ia5
// domain)(ia5 item)`.
func nameBlock(domainID, itemID string) []byte {
	names := append(ber.EncodeIA5(domainID), ber.EncodeIA5(itemID)...)
	return ber.Wrap(0x30, ber.Wrap(0xA0, ber.Wrap(0xA1, names)))
}
