// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package nacha

import (
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type parseState int

const (
	awaitingHeader parseState = iota
	inFile
	inBatch
	afterControl
)

type parsedEntry struct {
	line         int
	entry        *Entry
	addendaLines []int
}

type parsedBatch struct {
	line    int
	header  map[string]string
	entries []*parsedEntry
}

type parser struct {
	state      parseState
	headerLine int
	header     map[string]string
	control    map[string]string
	batches    []*parsedBatch
}

// ReadFile reads all of r and parses it as a NACHA file.
func ReadFile(r io.Reader, options ...Option) (*File, error) {
	bs, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading nacha file: %v", err)
	}
	return Parse(string(bs), options...)
}

// Parse reads NACHA text into a File. Input is split on line feeds (a trailing
// CR is dropped), or when it has no line breaks, into 94 character records.
//
// Records must appear in file order: a header, batches of entries and their
// addenda, the file control and then only padding. Control totals found in the
// input are discarded and recomputed from the entries. Options are applied to
// the rebuilt File and Batches.
func Parse(input string, options ...Option) (*File, error) {
	if input == "" {
		return nil, parseError(0, "input is empty")
	}

	p := &parser{}
	for i, line := range splitRecords(input) {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := p.record(i+1, line); err != nil {
			return nil, err
		}
	}

	if p.header == nil {
		return nil, parseError(0, "missing file header record")
	}
	if p.state == inBatch {
		return nil, parseError(0, "batch on line %d has no batch control record", p.batches[len(p.batches)-1].line)
	}
	if p.control == nil {
		return nil, parseError(0, "missing file control record")
	}
	if len(p.batches) == 0 {
		return nil, parseError(0, "no batches found")
	}
	return p.build(options)
}

func splitRecords(input string) []string {
	lines := strings.Split(input, "\n")
	if len(lines) > 1 {
		return lines
	}
	var out []string
	for i := 0; i < len(input); i += RecordLength {
		end := i + RecordLength
		if end > len(input) {
			end = len(input)
		}
		out = append(out, input[i:end])
	}
	return out
}

func (p *parser) record(n int, line string) error {
	switch line[0] {
	case '1':
		if p.state != awaitingHeader {
			return parseError(n, "unexpected file header record")
		}
		header := newFileHeader()
		p.header = Deserialize(line, header.Fields())
		p.headerLine = n
		p.state = inFile

	case '5':
		if p.state != inFile {
			return parseError(n, "unexpected batch header record")
		}
		header := newBatchHeader()
		p.batches = append(p.batches, &parsedBatch{
			line:   n,
			header: Deserialize(line, header.Fields()),
		})
		p.state = inBatch

	case '6':
		if p.state != inBatch {
			return parseError(n, "entry detail record outside of a batch")
		}
		entry, err := parseEntry(n, line)
		if err != nil {
			return err
		}
		batch := p.batches[len(p.batches)-1]
		batch.entries = append(batch.entries, &parsedEntry{line: n, entry: entry})

	case '7':
		if p.state != inBatch {
			return parseError(n, "addenda record outside of a batch")
		}
		batch := p.batches[len(p.batches)-1]
		if len(batch.entries) == 0 {
			return parseError(n, "addenda record without a preceding entry detail record")
		}
		addenda, err := parseAddenda(line)
		if err != nil {
			return err
		}
		last := batch.entries[len(batch.entries)-1]
		last.entry.AddAddenda(addenda)
		last.addendaLines = append(last.addendaLines, n)

	case '8':
		if p.state != inBatch {
			return parseError(n, "unexpected batch control record")
		}
		p.state = inFile

	case '9':
		switch {
		case p.state == afterControl && line == PaddingLine:
			// block padding
		case p.state == inFile:
			control := newFileControl()
			p.control = Deserialize(line, control.Fields())
			p.state = afterControl
		default:
			return parseError(n, "unexpected file control record")
		}

	default:
		return parseError(n, "unrecognized record type %q", line[0])
	}
	return nil
}

func parseEntry(n int, line string) (*Entry, error) {
	detail := newEntryDetail()
	v := Deserialize(line, detail.Fields())

	cents, err := strconv.ParseInt(v["amount"], 10, 64)
	if err != nil {
		return nil, &Error{
			Kind:  ParseError,
			Line:  n,
			Field: "amount",
			Value: v["amount"],
			Msg:   fmt.Sprintf("amount %q is not numeric", v["amount"]),
		}
	}
	return NewEntry(EntryOptions{
		TransactionCode:   v["transactionCode"],
		ReceivingDFI:      v["receivingDFI"] + v["checkDigit"],
		DFIAccount:        v["DFIAccount"],
		Amount:            decimal.New(cents, -2),
		IDNumber:          v["idNumber"],
		IndividualName:    v["individualName"],
		DiscretionaryData: v["discretionaryData"],
		AddendaID:         v["addendaId"],
		TraceNumber:       v["traceNumber"],
	}, WithoutValidation())
}

func parseAddenda(line string) (*Addenda, error) {
	record := newAddendaRecord()
	v := Deserialize(line, record.Fields())
	return NewAddenda(AddendaOptions{
		AddendaTypeCode:           v["addendaTypeCode"],
		PaymentRelatedInformation: v["paymentRelatedInformation"],
		AddendaSequenceNumber:     v["addendaSequenceNumber"],
		EntryDetailSequenceNumber: v["entryDetailSequenceNumber"],
	}, WithoutValidation())
}

func (p *parser) build(options []Option) (*File, error) {
	seq, _ := strconv.Atoi(p.batches[0].header["batchNumber"])
	file, err := NewFile(FileOptions{
		ImmediateDestination:     p.header["immediateDestination"],
		ImmediateOrigin:          p.header["immediateOrigin"],
		ImmediateDestinationName: p.header["immediateDestinationName"],
		ImmediateOriginName:      p.header["immediateOriginName"],
		ReferenceCode:            p.header["referenceCode"],
		FileCreationDate:         p.header["fileCreationDate"],
		FileCreationTime:         p.header["fileCreationTime"],
		FileIDModifier:           p.header["fileIdModifier"],
		BatchSequenceNumber:      seq,
	}, options...)
	if err != nil {
		return nil, atLine(err, p.headerLine)
	}

	for _, pb := range p.batches {
		h := pb.header
		batch, err := NewBatch(BatchOptions{
			ServiceClassCode:         h["serviceClassCode"],
			CompanyName:              h["companyName"],
			CompanyDiscretionaryData: h["companyDiscretionaryData"],
			CompanyIdentification:    h["companyIdentification"],
			StandardEntryClassCode:   h["standardEntryClassCode"],
			CompanyEntryDescription:  h["companyEntryDescription"],
			CompanyDescriptiveDate:   h["companyDescriptiveDate"],
			EffectiveEntryDate:       h["effectiveEntryDate"],
			OriginatingDFI:           h["originatingDFI"],
		}, options...)
		if err != nil {
			return nil, atLine(err, pb.line)
		}
		for _, pe := range pb.entries {
			if err := pe.entry.Validate(); err != nil {
				return nil, atLine(err, pe.line)
			}
			for i, a := range pe.entry.Addenda() {
				if err := a.Validate(); err != nil {
					return nil, atLine(err, pe.addendaLines[i])
				}
			}
			batch.AddEntry(pe.entry)
		}
		file.AddBatch(batch)
	}
	return file, nil
}

// atLine records the input line on validation errors raised while rebuilding records.
func atLine(err error, line int) error {
	var e *Error
	if errors.As(err, &e) && e.Line == 0 {
		e.Line = line
	}
	return err
}
