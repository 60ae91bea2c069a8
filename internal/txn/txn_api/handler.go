package txn_api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"carnival-tracker/internal/auth"
	"carnival-tracker/internal/logger"
	"carnival-tracker/internal/models"
	"carnival-tracker/internal/txn"
	"carnival-tracker/internal/utils"
)

type Handler struct {
	TxnService  *txn.Service
	AuthService *auth.Service
	Logger      *logger.Logger

	// Secret and TTL sign the session cookie issued on login.
	Secret string
	TTL    time.Duration
}

// Routes builds the full router: login, logout, desk, admin and delete.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(auth.Middleware(h.AuthService.Store, h.Secret, h.TTL))

	r.Get("/", h.LoginPage)
	r.Post("/", h.Login)
	r.Get("/logout", h.Logout)
	r.Get("/desk", h.DeskPage)
	r.Post("/desk", h.RecordTransaction)
	r.Get("/admin", h.AdminPage)
	r.Post("/delete/{id}", h.DeleteTransaction)
	return r
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	flash := utils.PopFlash(w, r)
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success:   true,
		Message:   "login",
		Flash:     flash,
		Timestamp: time.Now(),
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	sess, err := h.AuthService.Login(r.Context(), username, password)
	if err != nil {
		utils.SetFlash(w, "Invalid username or password", "danger")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	signed, err := auth.SignSessionToken(h.Secret, sess.ID, h.TTL)
	if err != nil {
		http.Error(w, "Could not establish session", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, auth.SessionCookie(signed, h.TTL))

	if sess.Role == models.RoleAdmin {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/desk", http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := auth.FromContext(r.Context()); sess != nil {
		_ = h.AuthService.Logout(r.Context(), sess.ID)
	}
	http.SetCookie(w, auth.ClearSessionCookie())
	utils.SetFlash(w, "Logged out successfully", "info")
	http.Redirect(w, r, "/", http.StatusFound)
}

// DeskPage lists the transactions owned by the session's desk. Admins have no
// desk, so they are sent back to login like anonymous visitors.
func (h *Handler) DeskPage(w http.ResponseWriter, r *http.Request) {
	sess := auth.FromContext(r.Context())
	if sess == nil || sess.Role == models.RoleAdmin {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	transactions, err := h.TxnService.ListForDesk(r.Context(), sess.Username)
	if err != nil {
		http.Error(w, "Could not load transactions: "+err.Error(), http.StatusInternalServerError)
		return
	}

	flash := utils.PopFlash(w, r)
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success:   true,
		Message:   sess.Username,
		Data:      transactions,
		Flash:     flash,
		Timestamp: time.Now(),
	})
}

func (h *Handler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	sess := auth.FromContext(r.Context())
	if sess == nil || sess.Role == models.RoleAdmin {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	req := txn.RecordRequest{
		TransactionID: r.PostFormValue("txn_id"),
		Amount:        r.PostFormValue("amount"),
	}
	var err error
	req.Tokens50, err = tokenCount(r.PostFormValue("tokens_50"))
	if err == nil {
		req.Tokens100, err = tokenCount(r.PostFormValue("tokens_100"))
	}
	if err == nil {
		req.TokensHaunted, err = tokenCount(r.PostFormValue("tokens_haunted"))
	}
	if err != nil {
		utils.SetFlash(w, "Error saving transaction.", "danger")
		http.Redirect(w, r, "/desk", http.StatusSeeOther)
		return
	}

	// Desk attribution always comes from the session, never the form.
	_, err = h.TxnService.Record(r.Context(), sess.Username, req)
	switch {
	case err == nil:
		utils.SetFlash(w, "Transaction recorded successfully!", "success")
	case errors.Is(err, txn.ErrDuplicateID):
		utils.SetFlash(w, "Duplicate Transaction ID! Please verify.", "danger")
	default:
		utils.SetFlash(w, "Error saving transaction.", "danger")
	}
	http.Redirect(w, r, "/desk", http.StatusSeeOther)
}

func (h *Handler) AdminPage(w http.ResponseWriter, r *http.Request) {
	sess := auth.FromContext(r.Context())
	if sess == nil || sess.Role != models.RoleAdmin {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	transactions, err := h.TxnService.ListAll(r.Context())
	if err != nil {
		http.Error(w, "Could not load transactions: "+err.Error(), http.StatusInternalServerError)
		return
	}

	flash := utils.PopFlash(w, r)
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success:   true,
		Message:   sess.Username,
		Data:      transactions,
		Flash:     flash,
		Timestamp: time.Now(),
	})
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	sess := auth.FromContext(r.Context())
	if sess == nil || sess.Role != models.RoleAdmin {
		utils.SetFlash(w, "Unauthorized access", "danger")
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.TxnService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, txn.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "Could not delete transaction: "+err.Error(), http.StatusInternalServerError)
		return
	}

	utils.SetFlash(w, "Transaction deleted successfully.", "success")
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// tokenCount parses an optional token-count field; absent or blank means zero.
func tokenCount(v string) (int64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	return strconv.ParseInt(v, 10, 64)
}
