package quizbank

import (
	"archive/zip"
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrSourceUnreadable is returned when a document cannot be opened or decoded
var ErrSourceUnreadable = errors.New("source document unreadable")

const docxBodyPart = "word/document.xml"

// LoadDocument reads paragraphs from a .docx file, or from a plain text file
// for any other extension
func LoadDocument(path string) ([]Paragraph, error) {
	if strings.EqualFold(filepath.Ext(path), ".docx") {
		return LoadDocx(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	defer f.Close()
	return LoadText(f)
}

// LoadDocx reads the paragraphs of a Word document
func LoadDocx(path string) ([]Paragraph, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrSourceUnreadable, path, err)
	}
	defer zr.Close()
	return readDocxArchive(&zr.Reader)
}

// ReadDocx reads the paragraphs of a Word document held in r
func ReadDocx(r io.ReaderAt, size int64) ([]Paragraph, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	return readDocxArchive(zr)
}

// LoadText turns every line of r into an unhighlighted paragraph
func LoadText(r io.Reader) ([]Paragraph, error) {
	var paragraphs []Paragraph
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		paragraphs = append(paragraphs, Paragraph{Text: line, Runs: []Run{{Text: line}}})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	return paragraphs, nil
}

func readDocxArchive(zr *zip.Reader) ([]Paragraph, error) {
	var body *zip.File
	for _, f := range zr.File {
		if f.Name == docxBodyPart {
			body = f
			break
		}
	}
	if body == nil {
		return nil, fmt.Errorf("%w: %s not found", ErrSourceUnreadable, docxBodyPart)
	}

	rc, err := body.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrSourceUnreadable, docxBodyPart, err)
	}
	defer rc.Close()

	paragraphs, err := decodeParagraphs(xml.NewDecoder(rc))
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrSourceUnreadable, docxBodyPart, err)
	}
	return paragraphs, nil
}

// paragraphBuilder collects the runs of one <w:p>; text boxes nest paragraphs
type paragraphBuilder struct {
	runs []Run
	run  *Run
}

func (pb *paragraphBuilder) flushRun() {
	if pb.run != nil && pb.run.Text != "" {
		pb.runs = append(pb.runs, *pb.run)
	}
	pb.run = nil
}

func (pb *paragraphBuilder) paragraph() Paragraph {
	pb.flushRun()
	var sb strings.Builder
	for _, run := range pb.runs {
		sb.WriteString(run.Text)
	}
	return Paragraph{Text: sb.String(), Runs: pb.runs}
}

// decodeParagraphs streams document.xml:
// <w:p> paragraph, <w:r> run, <w:rPr><w:highlight w:val=".."/> run formatting, <w:t> text
func decodeParagraphs(decoder *xml.Decoder) ([]Paragraph, error) {
	var (
		paragraphs []Paragraph
		stack      []*paragraphBuilder
	)
	top := func() *paragraphBuilder {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			pb := top()
			switch el.Name.Local {
			case "p":
				stack = append(stack, &paragraphBuilder{})
			case "r":
				if pb != nil {
					pb.flushRun()
					pb.run = &Run{}
				}
			case "highlight":
				if pb != nil && pb.run != nil {
					pb.run.Highlight = attrValue(el, "val")
				}
			case "t":
				var text string
				if err := decoder.DecodeElement(&text, &el); err != nil {
					return nil, err
				}
				if pb != nil && pb.run != nil {
					pb.run.Text += text
				}
			case "tab":
				if pb != nil && pb.run != nil {
					pb.run.Text += "\t"
				}
			case "br", "cr":
				if pb != nil && pb.run != nil {
					pb.run.Text += " "
				}
			}

		case xml.EndElement:
			pb := top()
			if pb == nil {
				continue
			}
			switch el.Name.Local {
			case "r":
				pb.flushRun()
			case "p":
				stack = stack[:len(stack)-1]
				paragraphs = append(paragraphs, pb.paragraph())
			}
		}
	}
	return paragraphs, nil
}

func attrValue(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
