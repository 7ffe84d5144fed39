package mms

import (
	"fmt"
	"strings"

	"github.com/slonegd/go61850report/ber"
)

// ServiceSupportedBit is a bit offset in the ServicesSupportedCalling
// bitmask of an MMS Initiate request.
type ServiceSupportedBit uint

const (
	Status ServiceSupportedBit = iota
	GetNameList
	Identify
	Rename
	Read
	Write
	GetVariableAccessAttributes
	DefineNamedVariable
	DefineScatteredAccess
	GetScatteredAccessAttributes
	DeleteVariableAccess
	DefineNamedVariableList
	GetNamedVariableListAttributes
	DeleteNamedVariableList
	DefineNamedType
	GetNamedTypeAttributes
	DeleteNamedType
	Input
	Output
	TakeControl
	RelinquishControl
	DefineSemaphore
	DeleteSemaphore
	ReportSemaphoreStatus
	ReportPoolSemaphoreStatus
	ReportSemaphoreEntryStatus
	InitiateDownloadSequence
	DownloadSegment
	TerminateDownloadSequence
	InitiateUploadSequence
	UploadSegment
	TerminateUploadSequence
	RequestDomainDownload
	RequestDomainUpload
	LoadDomainContent
	StoreDomainContent
	DeleteDomain
	GetDomainAttributes
	CreateProgramInvocation
	DeleteProgramInvocation
	Start
	Stop
	Resume
	Reset
	Kill
	GetProgramInvocationAttributes
	ObtainFile
	DefineEventCondition
	DeleteEventCondition
	GetEventConditionAttributes
	ReportEventConditionStatus
	AlterEventConditionMonitoring
	TriggerEvent
	DefineEventAction
	DeleteEventAction
	GetEventActionAttributes
	ReportActionStatus
	DefineEventEnrollment
	DeleteEventEnrollment
	AlterEventEnrollment
	ReportEventEnrollmentStatus
	GetEventEnrollmentAttributes
	AcknowledgeEventNotification
	GetAlarmSummary
	GetAlarmEnrollmentSummary
	ReadJournal
	WriteJournal
	InitializeJournal
	ReportJournalStatus
	CreateJournal
	DeleteJournal
	GetCapabilityList
	FileOpen
	FileRead
	FileClose
	FileRename
	FileDelete
	FileDirectory
	UnsolicitedStatus
	InformationReport
	EventNotification
	AttachToEventCondition
	AttachToSemaphore
	Conclude
	Cancel
)

func (b ServiceSupportedBit) String() string {
	switch b {
	case Status:
		return "Status"
	case GetNameList:
		return "GetNameList"
	case Identify:
		return "Identify"
	case Rename:
		return "Rename"
	case Read:
		return "Read"
	case Write:
		return "Write"
	case GetVariableAccessAttributes:
		return "GetVariableAccessAttributes"
	case DefineNamedVariable:
		return "DefineNamedVariable"
	case DefineScatteredAccess:
		return "DefineScatteredAccess"
	case GetScatteredAccessAttributes:
		return "GetScatteredAccessAttributes"
	case DeleteVariableAccess:
		return "DeleteVariableAccess"
	case DefineNamedVariableList:
		return "DefineNamedVariableList"
	case GetNamedVariableListAttributes:
		return "GetNamedVariableListAttributes"
	case DeleteNamedVariableList:
		return "DeleteNamedVariableList"
	case DefineNamedType:
		return "DefineNamedType"
	case GetNamedTypeAttributes:
		return "GetNamedTypeAttributes"
	case DeleteNamedType:
		return "DeleteNamedType"
	case Input:
		return "Input"
	case Output:
		return "Output"
	case TakeControl:
		return "TakeControl"
	case RelinquishControl:
		return "RelinquishControl"
	case DefineSemaphore:
		return "DefineSemaphore"
	case DeleteSemaphore:
		return "DeleteSemaphore"
	case ReportSemaphoreStatus:
		return "ReportSemaphoreStatus"
	case ReportPoolSemaphoreStatus:
		return "ReportPoolSemaphoreStatus"
	case ReportSemaphoreEntryStatus:
		return "ReportSemaphoreEntryStatus"
	case InitiateDownloadSequence:
		return "InitiateDownloadSequence"
	case DownloadSegment:
		return "DownloadSegment"
	case TerminateDownloadSequence:
		return "TerminateDownloadSequence"
	case InitiateUploadSequence:
		return "InitiateUploadSequence"
	case UploadSegment:
		return "UploadSegment"
	case TerminateUploadSequence:
		return "TerminateUploadSequence"
	case RequestDomainDownload:
		return "RequestDomainDownload"
	case RequestDomainUpload:
		return "RequestDomainUpload"
	case LoadDomainContent:
		return "LoadDomainContent"
	case StoreDomainContent:
		return "StoreDomainContent"
	case DeleteDomain:
		return "DeleteDomain"
	case GetDomainAttributes:
		return "GetDomainAttributes"
	case CreateProgramInvocation:
		return "CreateProgramInvocation"
	case DeleteProgramInvocation:
		return "DeleteProgramInvocation"
	case Start:
		return "Start"
	case Stop:
		return "Stop"
	case Resume:
		return "Resume"
	case Reset:
		return "Reset"
	case Kill:
		return "Kill"
	case GetProgramInvocationAttributes:
		return "GetProgramInvocationAttributes"
	case ObtainFile:
		return "ObtainFile"
	case DefineEventCondition:
		return "DefineEventCondition"
	case DeleteEventCondition:
		return "DeleteEventCondition"
	case GetEventConditionAttributes:
		return "GetEventConditionAttributes"
	case ReportEventConditionStatus:
		return "ReportEventConditionStatus"
	case AlterEventConditionMonitoring:
		return "AlterEventConditionMonitoring"
	case TriggerEvent:
		return "TriggerEvent"
	case DefineEventAction:
		return "DefineEventAction"
	case DeleteEventAction:
		return "DeleteEventAction"
	case GetEventActionAttributes:
		return "GetEventActionAttributes"
	case ReportActionStatus:
		return "ReportActionStatus"
	case DefineEventEnrollment:
		return "DefineEventEnrollment"
	case DeleteEventEnrollment:
		return "DeleteEventEnrollment"
	case AlterEventEnrollment:
		return "AlterEventEnrollment"
	case ReportEventEnrollmentStatus:
		return "ReportEventEnrollmentStatus"
	case GetEventEnrollmentAttributes:
		return "GetEventEnrollmentAttributes"
	case AcknowledgeEventNotification:
		return "AcknowledgeEventNotification"
	case GetAlarmSummary:
		return "GetAlarmSummary"
	case GetAlarmEnrollmentSummary:
		return "GetAlarmEnrollmentSummary"
	case ReadJournal:
		return "ReadJournal"
	case WriteJournal:
		return "WriteJournal"
	case InitializeJournal:
		return "InitializeJournal"
	case ReportJournalStatus:
		return "ReportJournalStatus"
	case CreateJournal:
		return "CreateJournal"
	case DeleteJournal:
		return "DeleteJournal"
	case GetCapabilityList:
		return "GetCapabilityList"
	case FileOpen:
		return "FileOpen"
	case FileRead:
		return "FileRead"
	case FileClose:
		return "FileClose"
	case FileRename:
		return "FileRename"
	case FileDelete:
		return "FileDelete"
	case FileDirectory:
		return "FileDirectory"
	case UnsolicitedStatus:
		return "UnsolicitedStatus"
	case InformationReport:
		return "InformationReport"
	case EventNotification:
		return "EventNotification"
	case AttachToEventCondition:
		return "AttachToEventCondition"
	case AttachToSemaphore:
		return "AttachToSemaphore"
	case Conclude:
		return "Conclude"
	case Cancel:
		return "Cancel"
	default:
		return fmt.Sprintf("ServiceSupportedBit(%d)", b)
	}
}

// ParameterCBBBit is a bit offset in the ProposedParameterCBB bitmask.
type ParameterCBBBit uint

const (
	Str1 ParameterCBBBit = iota
	Str2
	Vnam
	Valt
	Vadr
	Vsca
	Tpy
	Vlis
	Real
	SpareBit9
	Cei
)

func (b ParameterCBBBit) String() string {
	switch b {
	case Str1:
		return "Str1"
	case Str2:
		return "Str2"
	case Vnam:
		return "Vnam"
	case Valt:
		return "Valt"
	case Vadr:
		return "Vadr"
	case Vsca:
		return "Vsca"
	case Tpy:
		return "Tpy"
	case Vlis:
		return "Vlis"
	case Real:
		return "Real"
	case SpareBit9:
		return "SpareBit9"
	case Cei:
		return "Cei"
	default:
		return fmt.Sprintf("ParameterCBBBit(%d)", b)
	}
}

const (
	// ServicesSupportedCallingBitmaskSize is the fixed MMS wire size (85
	// data bits + 3 padding bits) of the ServicesSupportedCalling bitmask.
	ServicesSupportedCallingBitmaskSize = 11

	// ProposedParameterCBBBitmaskSize is the fixed MMS wire size (11 data
	// bits + 5 padding bits) of the ProposedParameterCBB bitmask.
	ProposedParameterCBBBitmaskSize = 2
)

// InitiateRequest holds the parameters of the one fixed MMS Initiate
// request this module ever sends. Per spec.md §4.4/§6 and Open
// Question 1, these parameters are captured from a working session and
// replayed verbatim — there is deliberately no way to override them at
// runtime. The fields stay exported only so a caller can log/inspect
// the request that is about to go out (spec.md §4.6: "logged in debug
// mode"); NewInitiateRequest is the only constructor and always returns
// this fixed value.
type InitiateRequest struct {
	LocalDetailCalling                uint32
	ProposedMaxServOutstandingCalling uint32
	ProposedMaxServOutstandingCalled  uint32
	ProposedDataStructureNestingLevel uint32
	ProposedVersionNumber             uint32
	ProposedParameterCBB              []ParameterCBBBit
	ServicesSupportedCalling          []ServiceSupportedBit
}

// defaultInitiateRequestParams returns the fixed parameter set
// libIEC61850 clients use, the same values the captured trace in
// spec.md §6 shows: ParameterCBB bitmask f100 (Str1, Str2, Vnam, Valt,
// Vlis), services bitmask ee1c00000408000079ef18. Not exported — there
// is no "default" to override, this is the only value that exists.
func defaultInitiateRequestParams() *InitiateRequest {
	return &InitiateRequest{
		LocalDetailCalling:                65000,
		ProposedMaxServOutstandingCalling: 5,
		ProposedMaxServOutstandingCalled:  5,
		ProposedDataStructureNestingLevel: 10,
		ProposedVersionNumber:             1,
		ProposedParameterCBB: []ParameterCBBBit{
			Str1,
			Str2,
			Vnam,
			Valt,
			Vlis,
		},
		ServicesSupportedCalling: []ServiceSupportedBit{
			Status,
			GetNameList,
			Identify,
			Read,
			Write,
			GetVariableAccessAttributes,
			DefineNamedVariableList,
			GetNamedVariableListAttributes,
			DeleteNamedVariableList,
			GetDomainAttributes,
			Kill,
			ReadJournal,
			WriteJournal,
			InitializeJournal,
			ReportJournalStatus,
			GetCapabilityList,
			FileOpen,
			FileRead,
			FileClose,
			FileDelete,
			FileDirectory,
			UnsolicitedStatus,
			InformationReport,
			Conclude,
			Cancel,
		},
	}
}

// String renders the set bits of ProposedParameterCBB/ServicesSupportedCalling
// by name instead of as a raw bitmask.
func (r *InitiateRequest) String() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("LocalDetailCalling:%d", r.LocalDetailCalling))
	parts = append(parts, fmt.Sprintf("ProposedMaxServOutstandingCalling:%d", r.ProposedMaxServOutstandingCalling))
	parts = append(parts, fmt.Sprintf("ProposedMaxServOutstandingCalled:%d", r.ProposedMaxServOutstandingCalled))
	parts = append(parts, fmt.Sprintf("ProposedDataStructureNestingLevel:%d", r.ProposedDataStructureNestingLevel))
	parts = append(parts, fmt.Sprintf("ProposedVersionNumber:%d", r.ProposedVersionNumber))

	if len(r.ProposedParameterCBB) > 0 {
		bitNames := make([]string, len(r.ProposedParameterCBB))
		for i, bit := range r.ProposedParameterCBB {
			bitNames[i] = bit.String()
		}
		parts = append(parts, fmt.Sprintf("ProposedParameterCBB:[%s]", strings.Join(bitNames, " ")))
	} else {
		parts = append(parts, "ProposedParameterCBB:[]")
	}

	if len(r.ServicesSupportedCalling) > 0 {
		bitNames := make([]string, len(r.ServicesSupportedCalling))
		for i, bit := range r.ServicesSupportedCalling {
			bitNames[i] = bit.String()
		}
		parts = append(parts, fmt.Sprintf("ServicesSupportedCalling:[%s]", strings.Join(bitNames, " ")))
	} else {
		parts = append(parts, "ServicesSupportedCalling:[]")
	}

	return fmt.Sprintf("InitiateRequest{%s}", strings.Join(parts, " "))
}

// Bytes BER-encodes the InitiateRequestPDU: A8 (Application 8,
// Constructed) wrapping the four scalar parameters and the
// mmsInitRequestDetail (A4).
func (r *InitiateRequest) Bytes() []byte {
	return ber.Wrap(0xA8, r.buildInitiateRequestContent())
}

// NewInitiateRequest returns the one fixed Initiate request this module
// ever builds, matching the captured trace in spec.md §6 byte-for-byte
// once wrapped by BuildInitiateEnvelope — see TestBuildInitiateEnvelopeMatchesCapturedTrace.
func NewInitiateRequest() *InitiateRequest {
	return defaultInitiateRequestParams()
}

func (r *InitiateRequest) buildInitiateRequestContent() []byte {
	var content []byte
	content = append(content, ber.Wrap(0x80, minimalUint32(r.LocalDetailCalling))...)
	content = append(content, ber.Wrap(0x81, minimalUint32(r.ProposedMaxServOutstandingCalling))...)
	content = append(content, ber.Wrap(0x82, minimalUint32(r.ProposedMaxServOutstandingCalled))...)
	content = append(content, ber.Wrap(0x83, minimalUint32(r.ProposedDataStructureNestingLevel))...)
	content = append(content, r.buildMMSInitRequestDetail()...)
	return content
}

func (r *InitiateRequest) buildMMSInitRequestDetail() []byte {
	var detail []byte
	detail = append(detail, ber.Wrap(0x80, minimalUint32(r.ProposedVersionNumber))...)

	paramCBB := ber.EncodeBitmaskFromOffsets(r.ProposedParameterCBB, ProposedParameterCBBBitmaskSize)
	detail = append(detail, ber.Wrap(0x81, append([]byte{0x05}, paramCBB...))...)

	services := ber.EncodeBitmaskFromOffsets(r.ServicesSupportedCalling, ServicesSupportedCallingBitmaskSize)
	detail = append(detail, ber.Wrap(0x82, append([]byte{0x03}, services...))...)

	return ber.Wrap(0xA4, detail)
}

// minimalUint32 renders v as the minimal-length big-endian INTEGER
// content BER expects (no redundant leading zero byte, one zero byte
// for v==0; a leading zero byte is kept when the next byte's top bit
// is set, so 65000 encodes as 00 fd e8).
func minimalUint32(v uint32) []byte {
	if v == 0 {
		return []byte{0}
	}
	var buf [4]byte
	buf[0] = byte(v >> 24)
	buf[1] = byte(v >> 16)
	buf[2] = byte(v >> 8)
	buf[3] = byte(v)
	i := 0
	for i < 3 && buf[i] == 0 && buf[i+1]&0x80 == 0 {
		i++
	}
	return buf[i:]
}
