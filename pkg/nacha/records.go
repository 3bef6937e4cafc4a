// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package nacha

// FileHeader is the "1" record.
type FileHeader struct {
	RecordTypeCode           Field
	PriorityCode             Field
	ImmediateDestination     Field
	ImmediateOrigin          Field
	FileCreationDate         Field
	FileCreationTime         Field
	FileIDModifier           Field
	RecordSize               Field
	BlockingFactor           Field
	FormatCode               Field
	ImmediateDestinationName Field
	ImmediateOriginName      Field
	ReferenceCode            Field
}

func newFileHeader() FileHeader {
	return FileHeader{
		RecordTypeCode:           Field{Name: "recordTypeCode", Width: 1, Position: 1, Required: true, Type: Numeric, Value: "1"},
		PriorityCode:             Field{Name: "priorityCode", Width: 2, Position: 2, Required: true, Type: Numeric, Value: "01"},
		ImmediateDestination:     Field{Name: "immediateDestination", Width: 10, Position: 3, Required: true, Type: RoutingNumber, PadChar: ' '},
		ImmediateOrigin:          Field{Name: "immediateOrigin", Width: 10, Position: 4, Required: true, Type: RoutingNumber, PadChar: ' '},
		FileCreationDate:         Field{Name: "fileCreationDate", Width: 6, Position: 5, Required: true, Type: Numeric},
		FileCreationTime:         Field{Name: "fileCreationTime", Width: 4, Position: 6, Type: Numeric},
		FileIDModifier:           Field{Name: "fileIdModifier", Width: 1, Position: 7, Required: true, Type: Alphanumeric, Value: "A"},
		RecordSize:               Field{Name: "recordSize", Width: 3, Position: 8, Required: true, Type: Numeric, Value: "094"},
		BlockingFactor:           Field{Name: "blockingFactor", Width: 2, Position: 9, Required: true, Type: Numeric, Value: "10"},
		FormatCode:               Field{Name: "formatCode", Width: 1, Position: 10, Required: true, Type: Numeric, Value: "1"},
		ImmediateDestinationName: Field{Name: "immediateDestinationName", Width: 23, Position: 11, Type: Alphanumeric},
		ImmediateOriginName:      Field{Name: "immediateOriginName", Width: 23, Position: 12, Type: Alphanumeric},
		ReferenceCode:            Field{Name: "referenceCode", Width: 8, Position: 13, Type: Alphanumeric},
	}
}

func (h *FileHeader) Fields() []*Field {
	return []*Field{
		&h.RecordTypeCode, &h.PriorityCode, &h.ImmediateDestination, &h.ImmediateOrigin,
		&h.FileCreationDate, &h.FileCreationTime, &h.FileIDModifier, &h.RecordSize,
		&h.BlockingFactor, &h.FormatCode, &h.ImmediateDestinationName, &h.ImmediateOriginName,
		&h.ReferenceCode,
	}
}

func (h *FileHeader) String() string {
	return mustSerialize(h.Fields())
}

// FileControl is the "9" record.
type FileControl struct {
	RecordTypeCode Field
	BatchCount     Field
	BlockCount     Field
	AddendaCount   Field
	EntryHash      Field
	TotalDebit     Field
	TotalCredit    Field
	Reserved       Field
}

func newFileControl() FileControl {
	return FileControl{
		RecordTypeCode: Field{Name: "recordTypeCode", Width: 1, Position: 1, Required: true, Type: Numeric, Value: "9"},
		BatchCount:     Field{Name: "batchCount", Width: 6, Position: 2, Required: true, Type: Numeric, Value: "0"},
		BlockCount:     Field{Name: "blockCount", Width: 6, Position: 3, Required: true, Type: Numeric, Value: "0"},
		AddendaCount:   Field{Name: "addendaCount", Width: 8, Position: 4, Required: true, Type: Numeric, Value: "0"},
		EntryHash:      Field{Name: "entryHash", Width: 10, Position: 5, Required: true, Type: Numeric, Value: "0"},
		TotalDebit:     Field{Name: "totalDebit", Width: 12, Position: 6, Required: true, Type: Numeric, Number: true, Value: "0"},
		TotalCredit:    Field{Name: "totalCredit", Width: 12, Position: 7, Required: true, Type: Numeric, Number: true, Value: "0"},
		Reserved:       Field{Name: "reserved", Width: 39, Position: 8, Type: Alphanumeric, Blank: true},
	}
}

func (c *FileControl) Fields() []*Field {
	return []*Field{
		&c.RecordTypeCode, &c.BatchCount, &c.BlockCount, &c.AddendaCount,
		&c.EntryHash, &c.TotalDebit, &c.TotalCredit, &c.Reserved,
	}
}

func (c *FileControl) String() string {
	return mustSerialize(c.Fields())
}

// BatchHeader is the "5" record.
type BatchHeader struct {
	RecordTypeCode           Field
	ServiceClassCode         Field
	CompanyName              Field
	CompanyDiscretionaryData Field
	CompanyIdentification    Field
	StandardEntryClassCode   Field
	CompanyEntryDescription  Field
	CompanyDescriptiveDate   Field
	EffectiveEntryDate       Field
	SettlementDate           Field
	OriginatorStatusCode     Field
	OriginatingDFI           Field
	BatchNumber              Field
}

func newBatchHeader() BatchHeader {
	return BatchHeader{
		RecordTypeCode:           Field{Name: "recordTypeCode", Width: 1, Position: 1, Required: true, Type: Numeric, Value: "5"},
		ServiceClassCode:         Field{Name: "serviceClassCode", Width: 3, Position: 2, Required: true, Type: Numeric},
		CompanyName:              Field{Name: "companyName", Width: 16, Position: 3, Required: true, Type: Alphanumeric},
		CompanyDiscretionaryData: Field{Name: "companyDiscretionaryData", Width: 20, Position: 4, Type: Alphanumeric},
		CompanyIdentification:    Field{Name: "companyIdentification", Width: 10, Position: 5, Required: true, Type: Alphanumeric},
		StandardEntryClassCode:   Field{Name: "standardEntryClassCode", Width: 3, Position: 6, Required: true, Type: Alpha},
		CompanyEntryDescription:  Field{Name: "companyEntryDescription", Width: 10, Position: 7, Required: true, Type: Alphanumeric},
		CompanyDescriptiveDate:   Field{Name: "companyDescriptiveDate", Width: 6, Position: 8, Type: Alphanumeric},
		EffectiveEntryDate:       Field{Name: "effectiveEntryDate", Width: 6, Position: 9, Required: true, Type: Numeric},
		SettlementDate:           Field{Name: "settlementDate", Width: 3, Position: 10, Type: Numeric, Blank: true},
		OriginatorStatusCode:     Field{Name: "originatorStatusCode", Width: 1, Position: 11, Required: true, Type: Numeric, Value: "1"},
		OriginatingDFI:           Field{Name: "originatingDFI", Width: 8, Position: 12, Required: true, Type: Numeric},
		BatchNumber:              Field{Name: "batchNumber", Width: 7, Position: 13, Required: true, Type: Numeric, Value: "0"},
	}
}

func (h *BatchHeader) Fields() []*Field {
	return []*Field{
		&h.RecordTypeCode, &h.ServiceClassCode, &h.CompanyName, &h.CompanyDiscretionaryData,
		&h.CompanyIdentification, &h.StandardEntryClassCode, &h.CompanyEntryDescription,
		&h.CompanyDescriptiveDate, &h.EffectiveEntryDate, &h.SettlementDate,
		&h.OriginatorStatusCode, &h.OriginatingDFI, &h.BatchNumber,
	}
}

func (h *BatchHeader) String() string {
	return mustSerialize(h.Fields())
}

// BatchControl is the "8" record.
type BatchControl struct {
	RecordTypeCode            Field
	ServiceClassCode          Field
	AddendaCount              Field
	EntryHash                 Field
	TotalDebit                Field
	TotalCredit               Field
	CompanyIdentification     Field
	MessageAuthenticationCode Field
	Reserved                  Field
	OriginatingDFI            Field
	BatchNumber               Field
}

func newBatchControl() BatchControl {
	return BatchControl{
		RecordTypeCode:            Field{Name: "recordTypeCode", Width: 1, Position: 1, Required: true, Type: Numeric, Value: "8"},
		ServiceClassCode:          Field{Name: "serviceClassCode", Width: 3, Position: 2, Required: true, Type: Numeric},
		AddendaCount:              Field{Name: "addendaCount", Width: 6, Position: 3, Required: true, Type: Numeric, Value: "0"},
		EntryHash:                 Field{Name: "entryHash", Width: 10, Position: 4, Required: true, Type: Numeric, Value: "0"},
		TotalDebit:                Field{Name: "totalDebit", Width: 12, Position: 5, Required: true, Type: Numeric, Number: true, Value: "0"},
		TotalCredit:               Field{Name: "totalCredit", Width: 12, Position: 6, Required: true, Type: Numeric, Number: true, Value: "0"},
		CompanyIdentification:     Field{Name: "companyIdentification", Width: 10, Position: 7, Required: true, Type: Alphanumeric},
		MessageAuthenticationCode: Field{Name: "messageAuthenticationCode", Width: 19, Position: 8, Type: Alphanumeric, Blank: true},
		Reserved:                  Field{Name: "reserved", Width: 6, Position: 9, Type: Alphanumeric, Blank: true},
		OriginatingDFI:            Field{Name: "originatingDFI", Width: 8, Position: 10, Required: true, Type: Numeric},
		BatchNumber:               Field{Name: "batchNumber", Width: 7, Position: 11, Required: true, Type: Numeric, Value: "0"},
	}
}

func (c *BatchControl) Fields() []*Field {
	return []*Field{
		&c.RecordTypeCode, &c.ServiceClassCode, &c.AddendaCount, &c.EntryHash,
		&c.TotalDebit, &c.TotalCredit, &c.CompanyIdentification, &c.MessageAuthenticationCode,
		&c.Reserved, &c.OriginatingDFI, &c.BatchNumber,
	}
}

func (c *BatchControl) String() string {
	return mustSerialize(c.Fields())
}

// EntryDetail is the "6" record.
type EntryDetail struct {
	RecordTypeCode    Field
	TransactionCode   Field
	ReceivingDFI      Field
	CheckDigit        Field
	DFIAccount        Field
	Amount            Field
	IDNumber          Field
	IndividualName    Field
	DiscretionaryData Field
	AddendaID         Field
	TraceNumber       Field
}

func newEntryDetail() EntryDetail {
	return EntryDetail{
		RecordTypeCode:    Field{Name: "recordTypeCode", Width: 1, Position: 1, Required: true, Type: Numeric, Value: "6"},
		TransactionCode:   Field{Name: "transactionCode", Width: 2, Position: 2, Required: true, Type: Numeric},
		ReceivingDFI:      Field{Name: "receivingDFI", Width: 8, Position: 3, Required: true, Type: RoutingNumber},
		CheckDigit:        Field{Name: "checkDigit", Width: 1, Position: 4, Required: true, Type: Numeric},
		DFIAccount:        Field{Name: "DFIAccount", Width: 17, Position: 5, Required: true, Type: Alphanumeric},
		Amount:            Field{Name: "amount", Width: 10, Position: 6, Required: true, Type: Numeric, Number: true, Value: "0"},
		IDNumber:          Field{Name: "idNumber", Width: 15, Position: 7, Type: Alphanumeric},
		IndividualName:    Field{Name: "individualName", Width: 22, Position: 8, Required: true, Type: Alphanumeric},
		DiscretionaryData: Field{Name: "discretionaryData", Width: 2, Position: 9, Type: Alphanumeric},
		AddendaID:         Field{Name: "addendaId", Width: 1, Position: 10, Required: true, Type: Numeric, Value: "0"},
		TraceNumber:       Field{Name: "traceNumber", Width: 15, Position: 11, Type: Numeric, Blank: true},
	}
}

func (e *EntryDetail) Fields() []*Field {
	return []*Field{
		&e.RecordTypeCode, &e.TransactionCode, &e.ReceivingDFI, &e.CheckDigit, &e.DFIAccount,
		&e.Amount, &e.IDNumber, &e.IndividualName, &e.DiscretionaryData, &e.AddendaID,
		&e.TraceNumber,
	}
}

func (e *EntryDetail) String() string {
	return mustSerialize(e.Fields())
}

// AddendaRecord is the "7" record.
type AddendaRecord struct {
	RecordTypeCode            Field
	AddendaTypeCode           Field
	PaymentRelatedInformation Field
	AddendaSequenceNumber     Field
	EntryDetailSequenceNumber Field
}

func newAddendaRecord() AddendaRecord {
	return AddendaRecord{
		RecordTypeCode:            Field{Name: "recordTypeCode", Width: 1, Position: 1, Required: true, Type: Numeric, Value: "7"},
		AddendaTypeCode:           Field{Name: "addendaTypeCode", Width: 2, Position: 2, Required: true, Type: Numeric, Value: "05"},
		PaymentRelatedInformation: Field{Name: "paymentRelatedInformation", Width: 80, Position: 3, Type: Alphanumeric},
		AddendaSequenceNumber:     Field{Name: "addendaSequenceNumber", Width: 4, Position: 4, Required: true, Type: Numeric, Value: "1"},
		EntryDetailSequenceNumber: Field{Name: "entryDetailSequenceNumber", Width: 7, Position: 5, Type: Numeric},
	}
}

func (a *AddendaRecord) Fields() []*Field {
	return []*Field{
		&a.RecordTypeCode, &a.AddendaTypeCode, &a.PaymentRelatedInformation,
		&a.AddendaSequenceNumber, &a.EntryDetailSequenceNumber,
	}
}

func (a *AddendaRecord) String() string {
	return mustSerialize(a.Fields())
}
