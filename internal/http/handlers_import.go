package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/importer"
)

type importView struct {
	page
	Kinds []importKind
}

type importKind struct {
	Value   string
	Label   string
	Columns string
}

func (s *Server) handleImportForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "import.html", importView{
		page: s.page("Import statement", "import"),
		Kinds: []importKind{
			{Value: string(importer.KindBank), Label: "Bank statement", Columns: strings.Join(importer.KindBank.Columns(), ", ")},
			{Value: string(importer.KindCard), Label: "Credit card statement", Columns: strings.Join(importer.KindCard.Columns(), ", ")},
		},
	})
}

// handleImport validates an uploaded statement and appends its rows.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		s.fail(w, r, "Upload parse error", err, BadRequestError("Upload too large or malformed"))
		return
	}
	kind, err := importer.ParseKind(r.FormValue("kind"))
	if err != nil {
		s.fail(w, r, "Unknown statement kind", err, UnprocessableEntityError("Choose bank or card statement"))
		return
	}
	file, hdr, err := r.FormFile("statement")
	if err != nil {
		s.fail(w, r, "Missing statement file", err, BadRequestError("Choose a CSV file to upload"))
		return
	}
	defer file.Close()

	res, err := s.svc.Import.Import(r.Context(), kind, r.FormValue("person"), file)
	var schemaErr *importer.SchemaError
	switch {
	case err == nil:
	case errors.As(err, &schemaErr):
		s.fail(w, r, "Statement schema mismatch", err, UnprocessableEntityError(
			"The file columns do not match the "+string(kind)+" statement format",
			"Expected: "+strings.Join(schemaErr.Expected, ", "),
			"Received: "+strings.Join(schemaErr.Received, ", ")))
		return
	case errors.Is(err, core.ErrEmptyPerson):
		s.fail(w, r, "Import without person", err, UnprocessableEntityError("Choose who the statement belongs to"))
		return
	case errors.Is(err, importer.ErrEmptyFile):
		s.fail(w, r, "Empty statement", err, UnprocessableEntityError("The file is empty"))
		return
	default:
		s.fail(w, r, "Import failed", err, InternalServerError("Could not save to the spreadsheet"))
		return
	}

	SuccessResponse(fmt.Sprintf("Imported %d rows from %s into %s", res.Rows, hdr.Filename, res.Sheet)).
		Trigger(EventStatementLoaded, map[string]any{"sheet": res.Sheet, "rows": res.Rows, "batch_id": res.BatchID}).
		Write(w)
}
