// Package rcb drives Report Control Block activation: the fixed
// canonical sequence of SetRCBValues writes that enables buffered or
// unbuffered reporting on an IED, optionally preceded by a GetRCBValues
// probe.
package rcb

import (
	"context"
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/slonegd/go61850report/internal/errs"
	"github.com/slonegd/go61850report/internal/logging"
	"github.com/slonegd/go61850report/mms"
)

func init() {
	rptEnaIdx := slices.Index(mms.AttributeOrder, mms.AttrRptEna)
	giIdx := slices.Index(mms.AttributeOrder, mms.AttrGI)
	if rptEnaIdx < 0 || giIdx < 0 || rptEnaIdx > giIdx {
		panic("rcb: mms.AttributeOrder must write RptEna before GI")
	}
}

// Exchanger sends a confirmed-request PDU and returns the matching
// confirmed response, forwarding any asynchronous informationReport
// that arrives in between to its own caller's report callback. The
// session/reports client is the only implementation; rcb depends only
// on this narrow interface so it can be tested against a fake.
type Exchanger interface {
	Exchange(ctx context.Context, pdu []byte) (response []byte, err error)
}

// ActivationOptions holds the RCB reference and the value for each of
// the eight attributes the activation sequence writes.
type ActivationOptions struct {
	DomainID string
	ItemID   string

	ResvTms      uint64
	IntgPdMillis uint64
	TrgOps       []byte
	OptFlds      []byte
	PurgeBuf     bool
	EntryID      []byte
	RptEna       bool
	GI           bool

	// ProbeFirst, when true, sends a GetRCBValues request before the
	// SetRCBValues sequence and logs a ProtocolMismatch warning (not
	// fatal) if the probe's RptEna/DatSet disagree with what the
	// caller is about to request.
	ProbeFirst bool
}

// DefaultActivationOptions returns an ActivationOptions for (domainID,
// itemID) with the wire defaults from captured traces: ResvTms=5,
// IntgPd=2000ms, TrgOps=`02 0c`, OptFlds=`06 7b 00`, PurgeBuf=true,
// EntryID=8 zero bytes, RptEna=true, GI=true.
func DefaultActivationOptions(domainID, itemID string) ActivationOptions {
	return ActivationOptions{
		DomainID:     domainID,
		ItemID:       itemID,
		ResvTms:      mms.DefaultResvTms,
		IntgPdMillis: mms.DefaultIntgPd,
		TrgOps:       append([]byte(nil), mms.DefaultTrgOps...),
		OptFlds:      append([]byte(nil), mms.DefaultOptFlds...),
		PurgeBuf:     mms.DefaultPurgeBuf,
		EntryID:      append([]byte(nil), mms.DefaultEntryID...),
		RptEna:       true,
		GI:           true,
	}
}

// Activate runs the fixed 8-step activation sequence: ResvTms, IntgPd,
// TrgOps, OptFlds, PurgeBuf, EntryID, RptEna, GI, in that order. RptEna
// must precede GI to avoid the IED disabling reporting on a late
// attribute write. EOF or any transport error at any step is fatal —
// this hardens the original polling client's tolerance of mid-sequence
// EOF, per the degradation-policy design note.
func Activate(ctx context.Context, ex Exchanger, invokeIDs *mms.InvokeIDCounter, opts ActivationOptions, logger logging.Logger) error {
	if logger == nil {
		logger = logging.NewNoop()
	}

	domainID, itemID := NormalizeReference(opts.DomainID, opts.ItemID)

	if opts.ProbeFirst {
		if err := probe(ctx, ex, invokeIDs, domainID, itemID, opts, logger); err != nil {
			return err
		}
	}

	for _, attr := range mms.AttributeOrder {
		value, err := valueFor(attr, opts)
		if err != nil {
			return err
		}
		pdu := mms.EncodeSetRCBValues(invokeIDs, domainID, itemID, attr, value)
		if _, err := ex.Exchange(ctx, pdu); err != nil {
			return &errs.TransportError{Op: fmt.Sprintf("SetRCBValues(%s)", attr), Err: err}
		}
		logger.Debug("rcb: %s$%s <- %s set", domainID, itemID, attr)
	}
	return nil
}

func probe(ctx context.Context, ex Exchanger, invokeIDs *mms.InvokeIDCounter, domainID, itemID string, opts ActivationOptions, logger logging.Logger) error {
	current, err := Probe(ctx, ex, invokeIDs, domainID, itemID)
	if err != nil {
		return err
	}
	if current.RptEna != opts.RptEna || current.DatSet != "" && current.DatSet != opts.ItemID {
		logger.Warn("rcb: %v", &errs.ProtocolMismatch{
			Expected: fmt.Sprintf("RptEna=%t DatSet=%s", opts.RptEna, opts.ItemID),
			Got:      fmt.Sprintf("RptEna=%t DatSet=%s", current.RptEna, current.DatSet),
		})
	}
	return nil
}

// Probe sends a bare GetRCBValues request for (domainID, itemID) and
// decodes its response, without writing anything. Used both as the
// internal ProbeFirst step of Activate and directly by the CLI's
// get-rcb subcommand, which only wants to read current values.
func Probe(ctx context.Context, ex Exchanger, invokeIDs *mms.InvokeIDCounter, domainID, itemID string) (ProbedRCBValues, error) {
	domainID, itemID = NormalizeReference(domainID, itemID)
	pdu := mms.EncodeGetRCBValues(invokeIDs, domainID, itemID)
	response, err := ex.Exchange(ctx, pdu)
	if err != nil {
		return ProbedRCBValues{}, &errs.TransportError{Op: "GetRCBValues", Err: err}
	}
	return DecodeGetRCBValuesResponse(response)
}

func valueFor(attr mms.Attribute, opts ActivationOptions) ([]byte, error) {
	switch attr {
	case mms.AttrResvTms:
		return mms.EncodeResvTms(opts.ResvTms), nil
	case mms.AttrIntgPd:
		return mms.EncodeIntgPdMillis(opts.IntgPdMillis), nil
	case mms.AttrTrgOps:
		return mms.EncodeTrgOps(opts.TrgOps), nil
	case mms.AttrOptFlds:
		return mms.EncodeOptFlds(opts.OptFlds), nil
	case mms.AttrPurgeBuf:
		return mms.EncodePurgeBuf(opts.PurgeBuf), nil
	case mms.AttrEntryID:
		return mms.EncodeEntryID(opts.EntryID), nil
	case mms.AttrRptEna:
		return mms.EncodeRptEna(opts.RptEna), nil
	case mms.AttrGI:
		return mms.EncodeGI(opts.GI), nil
	default:
		return nil, fmt.Errorf("rcb: unknown attribute %q", attr)
	}
}
