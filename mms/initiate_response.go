package mms

import (
	"errors"
	"fmt"
	"strings"

	"github.com/slonegd/go61850report/ber"
)

// InitiateResponse holds the parameters negotiated by the server in an
// MMS Initiate Response PDU.
type InitiateResponse struct {
	LocalDetailCalled                   *uint32
	NegotiatedMaxServOutstandingCalling uint32
	NegotiatedMaxServOutstandingCalled  uint32
	NegotiatedDataStructureNestingLevel *uint32
	NegotiatedVersionNumber             uint32
	NegotiatedParameterCBB              []ParameterCBBBit
	ServicesSupportedCalled             []ServiceSupportedBit
}

func (r *InitiateResponse) String() string {
	var parts []string

	if r.LocalDetailCalled != nil {
		parts = append(parts, fmt.Sprintf("LocalDetailCalled:%d", *r.LocalDetailCalled))
	} else {
		parts = append(parts, "LocalDetailCalled:<nil>")
	}
	parts = append(parts, fmt.Sprintf("NegotiatedMaxServOutstandingCalling:%d", r.NegotiatedMaxServOutstandingCalling))
	parts = append(parts, fmt.Sprintf("NegotiatedMaxServOutstandingCalled:%d", r.NegotiatedMaxServOutstandingCalled))
	if r.NegotiatedDataStructureNestingLevel != nil {
		parts = append(parts, fmt.Sprintf("NegotiatedDataStructureNestingLevel:%d", *r.NegotiatedDataStructureNestingLevel))
	} else {
		parts = append(parts, "NegotiatedDataStructureNestingLevel:<nil>")
	}
	parts = append(parts, fmt.Sprintf("NegotiatedVersionNumber:%d", r.NegotiatedVersionNumber))

	if len(r.NegotiatedParameterCBB) > 0 {
		bitNames := make([]string, len(r.NegotiatedParameterCBB))
		for i, bit := range r.NegotiatedParameterCBB {
			bitNames[i] = bit.String()
		}
		parts = append(parts, fmt.Sprintf("NegotiatedParameterCBB:[%s]", strings.Join(bitNames, " ")))
	} else {
		parts = append(parts, "NegotiatedParameterCBB:[]")
	}

	if len(r.ServicesSupportedCalled) > 0 {
		bitNames := make([]string, len(r.ServicesSupportedCalled))
		for i, bit := range r.ServicesSupportedCalled {
			bitNames[i] = bit.String()
		}
		parts = append(parts, fmt.Sprintf("ServicesSupportedCalled:[%s]", strings.Join(bitNames, " ")))
	} else {
		parts = append(parts, "ServicesSupportedCalled:[]")
	}

	return fmt.Sprintf("InitiateResponse{%s}", strings.Join(parts, " "))
}

// ParseInitiateResponse decodes a BER-encoded MMS InitiateResponsePDU
// (tag 0xA9): four scalar parameters plus the nested
// mmsInitResponseDetail (0xA4) carrying version number and the two
// negotiated bitmasks.
func ParseInitiateResponse(buffer []byte) (*InitiateResponse, error) {
	if len(buffer) == 0 {
		return nil, errors.New("empty buffer")
	}
	if buffer[0] != 0xA9 {
		return nil, fmt.Errorf("invalid tag: expected 0xA9, got 0x%02x", buffer[0])
	}

	response := &InitiateResponse{}

	bufPos := 1
	maxBufPos := len(buffer)

	newPos, length, err := ber.DecodeLength(buffer, bufPos, maxBufPos)
	if err != nil {
		return nil, fmt.Errorf("failed to decode length: %w", err)
	}
	bufPos = newPos

	if bufPos+length > maxBufPos {
		return nil, errors.New("invalid length: exceeds buffer size")
	}
	maxBufPos = bufPos + length

	for bufPos < maxBufPos {
		tag := buffer[bufPos]
		bufPos++

		newPos, length, err := ber.DecodeLength(buffer, bufPos, maxBufPos)
		if err != nil {
			return nil, fmt.Errorf("failed to decode length for tag 0x%02x: %w", tag, err)
		}
		bufPos = newPos

		if bufPos+length > maxBufPos {
			return nil, fmt.Errorf("invalid length for tag 0x%02x: exceeds buffer size", tag)
		}

		switch tag {
		case 0x80: // localDetailCalled (optional)
			value := ber.DecodeUint32(buffer, length, bufPos)
			response.LocalDetailCalled = &value
			bufPos += length

		case 0x81: // negotiatedMaxServOutstandingCalling
			response.NegotiatedMaxServOutstandingCalling = ber.DecodeUint32(buffer, length, bufPos)
			bufPos += length

		case 0x82: // negotiatedMaxServOutstandingCalled
			response.NegotiatedMaxServOutstandingCalled = ber.DecodeUint32(buffer, length, bufPos)
			bufPos += length

		case 0x83: // negotiatedDataStructureNestingLevel (optional)
			value := ber.DecodeUint32(buffer, length, bufPos)
			response.NegotiatedDataStructureNestingLevel = &value
			bufPos += length

		case 0xA4: // mmsInitResponseDetail
			detailStart := bufPos
			detailEnd := bufPos + length

			for detailStart < detailEnd {
				detailTag := buffer[detailStart]
				detailStart++

				newPos, detailLength, err := ber.DecodeLength(buffer, detailStart, detailEnd)
				if err != nil {
					return nil, fmt.Errorf("failed to decode length for detail tag 0x%02x: %w", detailTag, err)
				}
				detailStart = newPos

				if detailStart+detailLength > detailEnd {
					return nil, fmt.Errorf("invalid length for detail tag 0x%02x: exceeds buffer size", detailTag)
				}

				switch detailTag {
				case 0x80: // negotiatedVersionNumber
					response.NegotiatedVersionNumber = ber.DecodeUint32(buffer, detailLength, detailStart)
					detailStart += detailLength

				case 0x81: // negotiatedParameterCBB (BIT STRING)
					if detailLength < 1 {
						return nil, errors.New("invalid negotiatedParameterCBB: missing padding byte")
					}
					paddingBits := buffer[detailStart]
					detailStart++

					bitmaskBytes := detailLength - 1
					if bitmaskBytes > 0 {
						bitmask := buffer[detailStart : detailStart+bitmaskBytes]
						offsets := ber.DecodeBitmaskFromBytes(bitmask, paddingBits, ProposedParameterCBBBitmaskSize)
						response.NegotiatedParameterCBB = make([]ParameterCBBBit, 0, len(offsets))
						for _, offset := range offsets {
							if offset < uint(Cei)+1 {
								response.NegotiatedParameterCBB = append(response.NegotiatedParameterCBB, ParameterCBBBit(offset))
							}
						}
					}
					detailStart += bitmaskBytes

				case 0x82: // servicesSupportedCalled (BIT STRING)
					if detailLength < 1 {
						return nil, errors.New("invalid servicesSupportedCalled: missing padding byte")
					}
					paddingBits := buffer[detailStart]
					detailStart++

					bitmaskBytes := detailLength - 1
					if bitmaskBytes > 0 {
						bitmask := buffer[detailStart : detailStart+bitmaskBytes]
						offsets := ber.DecodeBitmaskFromBytes(bitmask, paddingBits, ServicesSupportedCallingBitmaskSize)
						response.ServicesSupportedCalled = make([]ServiceSupportedBit, 0, len(offsets))
						for _, offset := range offsets {
							if offset < uint(Cancel)+1 {
								response.ServicesSupportedCalled = append(response.ServicesSupportedCalled, ServiceSupportedBit(offset))
							}
						}
					}
					detailStart += bitmaskBytes

				default:
					detailStart += detailLength
				}
			}
			bufPos += length

		default:
			bufPos += length
		}
	}

	return response, nil
}
