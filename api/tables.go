package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/melkeydev/datadesk/dashboard"
)

func (s *Server) handleTableCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := s.svc.TableCounts(r.Context())
	if err != nil {
		s.writeError(w, r, "table counts", err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleDescribeTable(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	desc, err := s.svc.Describe(r.Context(), name)
	if err != nil {
		s.writeError(w, r, "describe table", err)
		return
	}
	writeJSON(w, http.StatusOK, desc)
}

func (s *Server) handleSampleTable(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	limit := dashboard.DefaultPreviewLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			badRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	rows, err := s.svc.Preview(r.Context(), name, limit)
	if err != nil {
		s.writeError(w, r, "sample table", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleUploadTable creates table {name} from the spreadsheet sent in the
// multipart field "archivo".
func (s *Server) handleUploadTable(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		badRequest(w, "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("archivo")
	if err != nil {
		badRequest(w, "missing file field archivo")
		return
	}
	defer file.Close()

	res, err := s.svc.UploadReader(r.Context(), name, header.Filename, file)
	if err != nil {
		s.writeError(w, r, "upload table", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDropTable(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := s.svc.Drop(r.Context(), name); err != nil {
		s.writeError(w, r, "drop table", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Tabla '" + name + "' eliminada exitosamente."})
}
