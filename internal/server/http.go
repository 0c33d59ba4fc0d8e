package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/karupanerura/emojiscript/internal/codegen"
	"github.com/karupanerura/emojiscript/internal/evaluator"
	"github.com/karupanerura/emojiscript/internal/parser"
	"github.com/karupanerura/emojiscript/internal/symbols"
	"github.com/karupanerura/emojiscript/internal/types"
)

const (
	executionsPath = "/v1/executions"
	maxRequestSize = 1 << 20
	reloadInterval = 5 * time.Second
)

type executionState string

const (
	stateActive    executionState = "ACTIVE"
	stateSucceeded executionState = "SUCCEEDED"
	stateFailed    executionState = "FAILED"
	stateCancelled executionState = "CANCELLED"
)

type sourceRequest struct {
	Source string `json:"source"`
}

type execution struct {
	mu     sync.RWMutex
	cancel context.CancelFunc

	Name      string         `json:"name"`
	StartTime time.Time      `json:"startTime"`
	EndTime   time.Time      `json:"endTime,omitempty"`
	State     executionState `json:"state"`
	Error     any            `json:"error,omitempty"`
	Source    string         `json:"source"`
	Code      string         `json:"code"`
	Output    string         `json:"output"`
}

// Write appends console output while the execution is running.
func (ex *execution) Write(p []byte) (int, error) {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	ex.Output += string(p)
	return len(p), nil
}

type httpHandler struct {
	symbolTable atomic.Value
	timeout     time.Duration
	idBase      uint64
	executions  sync.Map
}

func (h *httpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch path := r.URL.Path; {
	case path == "/v1/parse":
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h.parse(w, r)

	case path == "/v1/generate":
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h.generate(w, r)

	case path == executionsPath:
		switch r.Method {
		case http.MethodGet:
			h.listExecutions(w, r)
		case http.MethodPost:
			h.createExecution(w, r)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}

	case strings.HasPrefix(path, executionsPath+"/"):
		executionID := strings.TrimPrefix(path, executionsPath+"/")
		if i := strings.LastIndexByte(executionID, ':'); i != -1 {
			customMethod := executionID[i+1:]
			executionID = executionID[:i]
			if customMethod == "cancel" && r.Method == http.MethodPost {
				h.cancelExecution(w, r, executionID)
				return
			}
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}

		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h.getExecution(w, r, executionID)

	default:
		http.Error(w, "Not Found", http.StatusNotFound)
	}
}

func (h *httpHandler) decodeSource(w http.ResponseWriter, r *http.Request) (string, bool) {
	defer r.Body.Close()

	var req sourceRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestSize)).Decode(&req); err != nil {
		log.Printf("failed to decode request body: %v", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return "", false
	}
	return req.Source, true
}

func (h *httpHandler) compile(source string) (string, error) {
	program, err := parser.ParseSource(h.symbolTable.Load().(*symbols.Table), source)
	if err != nil {
		return "", err
	}
	code, err := codegen.Generate(program)
	if err != nil {
		return "", fmt.Errorf("codegen.Generate: %w", err)
	}
	return code, nil
}

func (h *httpHandler) parse(w http.ResponseWriter, r *http.Request) {
	source, ok := h.decodeSource(w, r)
	if !ok {
		return
	}

	program, err := parser.ParseSource(h.symbolTable.Load().(*symbols.Table), source)
	if err != nil {
		resError(w, source, err)
		return
	}
	resJSON(w, http.StatusOK, program)
}

func (h *httpHandler) generate(w http.ResponseWriter, r *http.Request) {
	source, ok := h.decodeSource(w, r)
	if !ok {
		return
	}

	code, err := h.compile(source)
	if err != nil {
		resError(w, source, err)
		return
	}
	resJSON(w, http.StatusOK, map[string]string{"code": code})
}

func (h *httpHandler) createExecution(w http.ResponseWriter, r *http.Request) {
	source, ok := h.decodeSource(w, r)
	if !ok {
		return
	}

	code, err := h.compile(source)
	if err != nil {
		resError(w, source, err)
		return
	}

	// go go
	id := fmt.Sprintf("%016x", atomic.AddUint64(&h.idBase, 1))
	ctx, cancel := context.WithCancel(context.Background())
	ex := &execution{
		cancel:    cancel,
		Name:      executionsPath + "/" + id,
		StartTime: time.Now().UTC(),
		State:     stateActive,
		Source:    source,
		Code:      code,
	}
	h.executions.Store(id, ex)
	go h.execute(ctx, ex, code)

	ex.mu.RLock()
	defer ex.mu.RUnlock()
	resJSON(w, http.StatusOK, ex)
}

func (h *httpHandler) execute(ctx context.Context, ex *execution, code string) {
	defer ex.cancel()

	e := evaluator.New(evaluator.WithStdout(ex), evaluator.WithTimeout(h.timeout))
	err := e.Run(ctx, code)

	ex.mu.Lock()
	defer ex.mu.Unlock()
	ex.EndTime = time.Now().UTC()
	if ex.State == stateCancelled {
		return
	}
	if err == nil {
		ex.State = stateSucceeded
		return
	}

	ex.State = stateFailed
	var exception types.Exception
	if errors.As(err, &exception) {
		ex.Error = exception.Exception()
	} else {
		log.Printf("failed to execute: %v", err)
		ex.Error = map[string]any{"message": err.Error()}
	}
}

func (h *httpHandler) listExecutions(w http.ResponseWriter, r *http.Request) {
	results := []*execution{}
	h.executions.Range(func(key, value any) bool {
		results = append(results, value.(*execution))
		return true
	})
	for _, ex := range results {
		ex.mu.RLock()
	}
	defer func() {
		for _, ex := range results {
			ex.mu.RUnlock()
		}
	}()
	sort.Slice(results, func(i, j int) bool {
		return results[i].Name < results[j].Name
	})

	resJSON(w, http.StatusOK, map[string][]*execution{"executions": results})
}

func (h *httpHandler) getExecution(w http.ResponseWriter, r *http.Request, id string) {
	ret, ok := h.executions.Load(id)
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	execution := ret.(*execution)

	execution.mu.RLock()
	defer execution.mu.RUnlock()
	resJSON(w, http.StatusOK, execution)
}

func (h *httpHandler) cancelExecution(w http.ResponseWriter, r *http.Request, id string) {
	ret, ok := h.executions.Load(id)
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	execution := ret.(*execution)

	execution.mu.Lock()
	defer execution.mu.Unlock()
	if execution.State != stateActive {
		http.Error(w, "Conflict", http.StatusConflict)
		return
	}
	execution.State = stateCancelled
	execution.cancel()
	resJSON(w, http.StatusOK, execution)
}

// NewHTTPHandler serves the compiler and executions over HTTP. The symbol table is
// reloaded through loader periodically. Each execution is bounded by timeout unless it
// is zero.
func NewHTTPHandler(loader func() (*symbols.Table, error), timeout time.Duration) (http.Handler, error) {
	table, err := loader()
	if err != nil {
		return nil, err
	}

	h := &httpHandler{timeout: timeout}
	h.symbolTable.Store(table)
	go func() {
		t := time.NewTicker(reloadInterval)
		for range t.C {
			table, err := loader()
			if err != nil {
				log.Printf("failed to reload symbol table: %v", err)
				continue
			}
			h.symbolTable.Store(table)
		}
	}()
	return h, nil
}

func resError(w http.ResponseWriter, source string, err error) {
	var exception types.Exception
	if !errors.As(err, &exception) {
		log.Printf("failed to compile: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	status := http.StatusBadRequest
	var limitErr *types.LimitError
	if errors.As(err, &limitErr) {
		status = http.StatusUnprocessableEntity
	}
	if err := resJSON(w, status, map[string]any{
		"error":      exception.Exception(),
		"diagnostic": types.RenderDiagnostic(err, source),
	}); err != nil {
		log.Printf("failed to write error response: %v", err)
	}
}

func resJSON(w http.ResponseWriter, status int, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(b)+1))
	w.WriteHeader(status)

	if _, err = w.Write(b); err != nil {
		return fmt.Errorf("w.Write: %w", err)
	}
	if _, err = io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("io.WriteString: %w", err)
	}
	return nil
}
