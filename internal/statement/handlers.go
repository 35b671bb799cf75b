package statement

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

const maxUploadSize = int64(50 << 20) // 50MB

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// jsonError writes a JSON error body with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// lookupError maps a service error to a status code
func lookupError(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// contentTypeFor guesses a MIME type from the file extension
func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Error encoding response", "error", err)
	}
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleListStatements returns all statements
func (s *Server) handleListStatements(w http.ResponseWriter, r *http.Request) {
	statements, err := s.service.ListStatements()
	if err != nil {
		s.logger.Error("Error listing statements", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if statements == nil {
		statements = []*Statement{}
	}

	s.writeJSON(w, http.StatusOK, statements)
}

// handleUploadStatement accepts a multipart upload and extracts it
func (s *Server) handleUploadStatement(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.logger.Error("Error parsing multipart form", "error", err)
		message := "Error parsing form"
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			message = "File is too large. Maximum size is 50MB."
		}
		jsonError(w, message, http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		s.logger.Error("Error getting file from form", "error", err)
		message := "No file provided"
		if errors.Is(err, http.ErrMissingFile) {
			message = "No file was selected. Please choose a file to upload."
		}
		jsonError(w, message, http.StatusBadRequest)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		s.logger.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	contentType := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if contentType == "" {
		contentType = contentTypeFor(header.Filename)
	}

	statement, err := s.service.ProcessStatement(r.Context(), header.Filename, data, contentType)
	if err != nil {
		s.logger.Error("Error processing statement", "filename", header.Filename, "error", err)
		if errors.Is(err, ErrInvalidDocument) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		jsonError(w, "Error saving statement. Please try again.", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusCreated, statement)
}

// handleGetStatement returns a single statement
func (s *Server) handleGetStatement(w http.ResponseWriter, r *http.Request) {
	statement, err := s.service.GetStatement(r.PathValue("id"))
	if err != nil {
		corsError(w, "Statement not found", lookupError(err))
		return
	}

	s.writeJSON(w, http.StatusOK, statement)
}

// handleGetStatementFile returns the uploaded file for a statement
func (s *Server) handleGetStatementFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetStatementFile(r.PathValue("id"))
	if err != nil {
		corsError(w, "File not found", lookupError(err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleExport serves a statement's result in one export format
func (s *Server) handleExport(format Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		data, err := s.service.Export(id, format)
		if err != nil {
			code := lookupError(err)
			if code != http.StatusNotFound {
				s.logger.Error("Error exporting statement", "id", id, "format", format.Name, "error", err)
			}
			corsError(w, http.StatusText(code), code)
			return
		}

		w.Header().Set("Content-Type", format.ContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+id+"."+format.Name+`"`)
		w.Write(data)
	}
}

// handleDeleteStatement deletes a statement and its file
func (s *Server) handleDeleteStatement(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteStatement(r.PathValue("id")); err != nil {
		code := lookupError(err)
		if code != http.StatusNotFound {
			s.logger.Error("Error deleting statement", "error", err)
		}
		corsError(w, "Error deleting statement", code)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
