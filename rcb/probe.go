package rcb

import (
	"fmt"

	"github.com/slonegd/go61850report/ber"
)

// ProbedRCBValues holds the subset of a GetRCBValues response this
// client inspects before activation: enough to log a ProtocolMismatch
// warning if the RCB is already in a surprising state, without needing
// a full positional decode of every optional attribute.
type ProbedRCBValues struct {
	RptEna bool
	DatSet string
}

// DecodeGetRCBValuesResponse walks a confirmed GetRCBValues response
// (`a1·30·a0·<structure of Data values>`) and extracts RptEna (a
// boolean Data) and DatSet (a visible-string Data) from among its
// top-level members, in whatever position they appear — unlike
// SetRCBValues, GetRCBValues responses vary in shape across IEDs
// depending on which attributes were requested, so this scans by kind
// rather than assuming fixed positions.
func DecodeGetRCBValuesResponse(response []byte) (ProbedRCBValues, error) {
	structure, ok := ber.FindFirstTag(response, 0xA0)
	if !ok {
		return ProbedRCBValues{}, fmt.Errorf("rcb: GetRCBValues response has no listOfAccessResult (tag 0xa0)")
	}

	data, _, err := ber.DecodeData(ber.Wrap(0xA0, structure), 0)
	if err != nil {
		return ProbedRCBValues{}, fmt.Errorf("rcb: decode GetRCBValues response: %w", err)
	}

	var out ProbedRCBValues
	var sawBool bool
	for _, member := range data.Structure() {
		switch member.Kind() {
		case ber.KindBool:
			if !sawBool {
				out.RptEna = member.Bool()
				sawBool = true
			}
		case ber.KindVisibleString:
			if out.DatSet == "" {
				out.DatSet = member.VisibleString()
			}
		}
	}
	return out, nil
}
