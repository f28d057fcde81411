package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/angelmondragon/trio-pos/api/responses"
	"github.com/angelmondragon/trio-pos/api/validators"
	"github.com/angelmondragon/trio-pos/internal/admin"
	"github.com/angelmondragon/trio-pos/internal/barcode"
	"github.com/angelmondragon/trio-pos/internal/terminal"
	"github.com/angelmondragon/trio-pos/internal/ui"
	pkgerrors "github.com/angelmondragon/trio-pos/pkg/errors"
	"github.com/angelmondragon/trio-pos/pkg/logger"
)

// imageFormField is the multipart field carrying the picked product image.
const imageFormField = "image"

// Terminal is the part of the checkout terminal driven over HTTP.
type Terminal interface {
	State(ctx context.Context) terminal.State
	Notifications() []ui.Notification
	Render(w io.Writer) error
	HandleKey(ctx context.Context, ev barcode.KeyEvent) terminal.KeyResult
	HandlePaste(ctx context.Context, text string) terminal.KeyResult
	HandleInput(ctx context.Context, ev terminal.InputEvent) error
	HandleClick(ctx context.Context, ev terminal.ClickEvent) error
	ImageFailed(ctx context.Context, productID int64)
	SelectImage(ctx context.Context, file *admin.ImageFile) error
	ToggleLanguage(ctx context.Context) (string, error)
	AnswerPrompt(ctx context.Context, accept bool) (string, error)
	Invoice(ctx context.Context, orderID int64) ([]byte, error)
}

var _ Terminal = (*terminal.Terminal)(nil)

type pasteRequest struct {
	Text string `json:"text" validate:"required"`
}

type imageErrorRequest struct {
	ProductID int64 `json:"product_id" validate:"required,min=1"`
}

type promptAnswerRequest struct {
	Accept *bool `json:"accept" validate:"required"`
}

type languageResponse struct {
	Language  string `json:"language"`
	Persisted bool   `json:"persisted"`
}

type promptAnswerResponse struct {
	Location string `json:"location"`
}

// TerminalPage serves the current document.
func TerminalPage(svc Terminal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := svc.Render(w); err != nil {
			logg.Error(r.Context(), "page.render_failed", err)
		}
	}
}

func TerminalState(svc Terminal) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.State(r.Context()))
	}
}

// TerminalNotifications lists the active notifications, oldest first. ?limit=n keeps the newest n.
func TerminalNotifications(svc Terminal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", ui.MaxNotifications, 1, ui.MaxNotifications)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items := svc.Notifications()
		if len(items) > limit {
			items = items[len(items)-limit:]
		}
		responses.WriteSuccess(w, items)
	}
}

// TerminalKey feeds one keydown of the search box.
func TerminalKey(svc Terminal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ev barcode.KeyEvent
		if err := validators.DecodeJSONBody(r, &ev); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, svc.HandleKey(r.Context(), ev))
	}
}

func TerminalPaste(svc Terminal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload pasteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, svc.HandlePaste(r.Context(), payload.Text))
	}
}

func TerminalInput(svc Terminal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ev terminal.InputEvent
		if err := validators.DecodeJSONBody(r, &ev); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.HandleInput(r.Context(), ev); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, svc.State(r.Context()))
	}
}

// TerminalClick dispatches a click. A destructive action the operator has not confirmed
// answers 409 with the prompt to show; repeating the click with X-Confirm: true performs it.
func TerminalClick(svc Terminal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var ev terminal.ClickEvent
		if err := validators.DecodeJSONBody(r, &ev); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		ctx = logg.WithField(ctx, "action", ev.Action)

		if err := svc.HandleClick(ctx, ev); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if prompt, asked := ui.ConfirmationRequested(ctx); asked {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConfirmation, prompt).
				WithDetails(map[string]any{"prompt": prompt, "action": ev.Action}))
			return
		}
		responses.WriteSuccess(w, svc.State(ctx))
	}
}

func TerminalImageError(svc Terminal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload imageErrorRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		svc.ImageFailed(r.Context(), payload.ProductID)
		responses.WriteSuccess(w, map[string]int64{"product_id": payload.ProductID})
	}
}

// TerminalImageSelect accepts the file picked in the product dialog as multipart field "image".
// A request without the field clears the selection. The part is streamed and at most
// maxImageBytes+1 bytes of it are kept, so an upload of any size reaches the dialog, which
// rejects it from its size.
func TerminalImageSelect(svc Terminal, logg *logger.Logger, maxImageBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		picked, err := readImagePart(r, maxImageBytes)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart upload"))
			return
		}
		if err := svc.SelectImage(ctx, picked); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, svc.State(ctx))
	}
}

// readImagePart returns the image field of a multipart body, or nil when the body has none.
// Content past maxImageBytes is not kept; such a file carries only a size above the limit.
func readImagePart(r *http.Request, maxImageBytes int64) (*admin.ImageFile, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if part.FormName() != imageFormField || part.FileName() == "" {
			_ = part.Close()
			continue
		}
		defer part.Close()

		content, err := io.ReadAll(io.LimitReader(part, maxImageBytes+1))
		if err != nil {
			return nil, err
		}
		picked := &admin.ImageFile{Filename: part.FileName(), Size: int64(len(content))}
		if picked.Size <= maxImageBytes {
			picked.Content = content
		}
		return picked, nil
	}
}

// TerminalLanguageToggle flips the display language. A preference that could not be saved
// still switches the screen and is reported as not persisted.
func TerminalLanguageToggle(svc Terminal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang, err := svc.ToggleLanguage(r.Context())
		if err != nil {
			logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "language.persist_failed")
		}
		responses.WriteSuccess(w, languageResponse{Language: lang, Persisted: err == nil})
	}
}

func TerminalPromptAnswer(svc Terminal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload promptAnswerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		location, err := svc.AnswerPrompt(r.Context(), *payload.Accept)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, promptAnswerResponse{Location: location})
	}
}

// TerminalInvoice streams the PDF invoice of an order from the backend.
func TerminalInvoice(svc Terminal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pdf, err := svc.Invoice(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=invoice-%d.pdf", orderID))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(pdf); err != nil {
			logg.Error(r.Context(), "invoice.write_failed", err)
		}
	}
}
