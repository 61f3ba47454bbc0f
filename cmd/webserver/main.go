package main

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"quizbank"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
)

const sessionName = "quiz-session"

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	db          *quizbank.DB
	store       *sessions.CookieStore
	templates   map[string]*template.Template
	parserCfg   quizbank.ParserConfig
	cache       *quizbank.BankCache
	maxUploadMB int64
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	quizbank.SetVerbose(true)

	parserCfg := quizbank.DefaultParserConfig()
	if cfg.ParserConfigPath != "" {
		parserCfg, err = quizbank.LoadParserConfig(cfg.ParserConfigPath)
		if err != nil {
			log.Fatalf("Failed to load parser config: %v", err)
		}
	}

	// Initialize database
	db, err := quizbank.OpenDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.CloseDB()

	if err := db.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	server := newServer(db, sessions.NewCookieStore([]byte(cfg.SessionSecret)), parserCfg, cfg.CacheSize)
	server.maxUploadMB = cfg.MaxUploadMB

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("Starting server on port %s", cfg.Port)
	log.Fatal(srv.ListenAndServe())
}

func newServer(db *quizbank.DB, store *sessions.CookieStore, parserCfg quizbank.ParserConfig, cacheSize int) *Server {
	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"printf": fmt.Sprintf,
	}

	templates := make(map[string]*template.Template)
	for _, name := range []string{"home", "bank", "quiz", "results"} {
		templates[name] = template.Must(template.New(name).Funcs(funcMap).ParseFS(templateFS,
			"templates/base.html", "templates/"+name+".html"))
	}

	return &Server{
		db:          db,
		store:       store,
		templates:   templates,
		parserCfg:   parserCfg,
		cache:       quizbank.NewBankCache(cacheSize),
		maxUploadMB: 20,
	}
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)

	r.Get("/", s.handleHome)
	r.Post("/banks", s.handleUpload)
	r.Route("/banks/{bankID}", func(r chi.Router) {
		r.Get("/", s.handleBank)
		r.Get("/quiz", s.handleQuiz)
		r.Post("/quiz", s.handleSubmit)
		r.Get("/results", s.handleResults)
		r.Post("/delete", s.handleDelete)
	})
	return r
}

func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates[name].ExecuteTemplate(&buf, "base.html", data); err != nil {
		log.Printf("Template error in %s: %v", name, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// loadBank returns the bank from the cache, reading it from the database on a miss
func (s *Server) loadBank(w http.ResponseWriter, r *http.Request, id string) (*quizbank.QuizBank, bool) {
	bank, err := s.cache.GetOrLoad(id, func() (*quizbank.QuizBank, error) {
		return s.db.GetBank(id)
	})
	if errors.Is(err, quizbank.ErrBankNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		log.Printf("Failed to load bank %s: %v", id, err)
		http.Error(w, "Failed to load bank", http.StatusInternalServerError)
		return nil, false
	}
	return bank, true
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	banks, err := s.db.ListBanks()
	if err != nil {
		log.Printf("Failed to get banks: %v", err)
		http.Error(w, "Failed to get banks", http.StatusInternalServerError)
		return
	}
	s.render(w, "home", map[string]interface{}{
		"Banks":       banks,
		"MaxUploadMB": s.maxUploadMB,
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	limit := s.maxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		http.Error(w, "Upload too large or malformed", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		http.Error(w, "Document is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read upload", http.StatusBadRequest)
		return
	}

	var paragraphs []quizbank.Paragraph
	if strings.EqualFold(filepath.Ext(header.Filename), ".docx") {
		paragraphs, err = quizbank.ReadDocx(bytes.NewReader(data), int64(len(data)))
	} else {
		paragraphs, err = quizbank.LoadText(bytes.NewReader(data))
	}
	if err != nil {
		log.Printf("Failed to read %s: %v", header.Filename, err)
		http.Error(w, "Could not read document", http.StatusUnprocessableEntity)
		return
	}

	bank := quizbank.Parse(paragraphs, s.parserCfg, nil)
	if bank.QuestionCount() == 0 {
		http.Error(w, "No questions found in document", http.StatusUnprocessableEntity)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}

	id, err := s.db.SaveBank(name, header.Filename, bank)
	if err != nil {
		log.Printf("Failed to save bank: %v", err)
		http.Error(w, "Failed to save bank", http.StatusInternalServerError)
		return
	}
	s.cache.Add(id, bank)

	http.Redirect(w, r, "/banks/"+id, http.StatusSeeOther)
}

func (s *Server) handleBank(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bankID")
	bank, ok := s.loadBank(w, r, id)
	if !ok {
		return
	}

	info, err := s.db.GetBankInfo(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	attempts, err := s.db.ListAttempts(id)
	if err != nil {
		log.Printf("Failed to get attempts: %v", err)
		http.Error(w, "Failed to get attempts", http.StatusInternalServerError)
		return
	}

	type sectionRow struct {
		Name      string
		Questions int
	}
	var sections []sectionRow
	for _, name := range bank.SelectableSections() {
		section, _ := bank.Section(name)
		sections = append(sections, sectionRow{Name: name, Questions: len(section.Questions)})
	}

	s.render(w, "bank", map[string]interface{}{
		"Bank":     info,
		"Sections": sections,
		"Attempts": attempts,
	})
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bankID")
	bank, ok := s.loadBank(w, r, id)
	if !ok {
		return
	}

	name := r.URL.Query().Get("section")
	if !bank.IsSelectable(name) {
		http.NotFound(w, r)
		return
	}
	section, _ := bank.Section(name)

	s.render(w, "quiz", map[string]interface{}{
		"BankID":  id,
		"Section": section,
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bankID")
	bank, ok := s.loadBank(w, r, id)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	name := r.FormValue("section")
	if !bank.IsSelectable(name) {
		http.Error(w, "Unknown section", http.StatusBadRequest)
		return
	}
	section, _ := bank.Section(name)

	answers := make(map[int]string)
	for i, question := range section.Questions {
		answerStr := r.FormValue(fmt.Sprintf("q%d", i))
		if answerStr == "" {
			continue
		}
		answer, err := strconv.Atoi(answerStr)
		if err != nil || answer < 0 || answer >= len(question.Options) {
			http.Error(w, "Invalid answer", http.StatusBadRequest)
			return
		}
		answers[i] = question.Options[answer].Text
	}

	result := quizbank.Grade(section, answers)
	attemptID, err := s.db.SaveAttempt(id, result)
	if err != nil {
		log.Printf("Failed to save attempt: %v", err)
		http.Error(w, "Failed to save attempt", http.StatusInternalServerError)
		return
	}

	session, _ := s.store.Get(r, sessionName)
	session.Values["attempt_id"] = attemptID
	if err := session.Save(r, w); err != nil {
		log.Printf("Session save error: %v", err)
	}

	http.Redirect(w, r, fmt.Sprintf("/banks/%s/results", id), http.StatusSeeOther)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bankID")

	session, _ := s.store.Get(r, sessionName)
	attemptID, _ := session.Values["attempt_id"].(string)
	if attemptID == "" {
		http.Redirect(w, r, "/banks/"+id, http.StatusSeeOther)
		return
	}

	attempt, err := s.db.GetAttempt(attemptID)
	if err != nil || attempt.BankID != id {
		http.Redirect(w, r, "/banks/"+id, http.StatusSeeOther)
		return
	}

	s.render(w, "results", map[string]interface{}{
		"BankID":  id,
		"Attempt": attempt,
		"Result":  attempt.Result,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bankID")
	err := s.db.DeleteBank(id)
	if errors.Is(err, quizbank.ErrBankNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("Failed to delete bank %s: %v", id, err)
		http.Error(w, "Failed to delete bank", http.StatusInternalServerError)
		return
	}
	s.cache.Remove(id)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
