package render

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/formloom/forms-backend/internal/entity"
)

const (
	// Welcome messages
	MsgWelcome = `👋 Привет! Я превращаю описание в готовую форму.

Я умею:
• Собрать форму по описанию на естественном языке
• Провести заполнение формы вопрос за вопросом
• Показать статистику по ответам`

	// Prompt request
	MsgAskPrompt = `📝 Опиши, какая форма тебе нужна.

Например: "Форма обратной связи с именем, email и оценкой от 1 до 5".`

	// Clarification from the model
	MsgClarification = `🤔 Мне нужно уточнение:

%s

Опиши форму ещё раз, учитывая вопрос выше.`

	// Field question
	MsgField = `✏️ Поле %d из %d: %s`

	MsgFieldOptional = `✏️ Поле %d из %d: %s

Поле необязательное — можно пропустить.`

	// Choice field hint
	MsgChooseOption = `Выбери вариант кнопкой ниже.`

	// Validation errors on an answer
	MsgAnswerRejected = `⚠️ Ответ не подходит:

%s

Попробуй ещё раз.`

	// Submission accepted
	MsgSubmissionAccepted = `✅ Готово! Ответы сохранены.

Чтобы заполнить форму ещё раз или создать новую, нажми /start`

	// Forms list
	MsgFormsListEmpty = `📭 Форм пока нет. Создай первую — нажми "Создать форму".`
	MsgFormsList      = `📋 Твои формы — выбери одну:`

	// Cancel flow
	MsgConfirmCancel   = `⚠️ Вы уверены? Весь прогресс будет потерян.`
	MsgSessionFinished = `👋 Диалог завершён.

Чтобы начать новый, нажми /start`
	MsgNothingToCancel = `Нет активного диалога. Используйте /start`
	MsgContinue        = `👌 Продолжаем.`

	// Errors
	ErrGeneric            = `❌ Произошла ошибка. Попробуйте ещё раз или нажмите /start`
	ErrFormNotFound       = `❌ Форма не найдена. Нажмите /start и выберите другую.`
	ErrSessionNotFound    = `❌ Диалог не найден. Начните новый с /start`
	ErrInvalidState       = `❌ Неверное состояние. Нажмите /start чтобы начать заново.`
	ErrFormWithoutFields  = `❌ В этой форме нет полей — заполнять нечего.`
	ErrNetworkIssue       = `❌ Проблема с соединением. Попробуй чуть позже.`
	ErrServiceUnavailable = `❌ Сервис временно недоступен. Попробуй через пару минут.`
	ErrTimeout            = `❌ Операция заняла слишком много времени. Попробуй ещё раз.`
	ErrQuotaExceeded      = `❌ Превышен лимит запросов. Подожди немного.`
)

// RenderFormPreview shows a generated form before filling.
func RenderFormPreview(form *entity.Form) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📄 %s\n\n", form.Title)

	for i, field := range form.Schema.Fields {
		marker := "○"
		if strings.Contains(field.Validation, "required") {
			marker = "●"
		}
		fmt.Fprintf(&sb, "%d. %s %s\n", i+1, marker, field.Label)
	}

	sb.WriteString("\n● — обязательное поле, ○ — необязательное")
	return sb.String()
}

// RenderField formats one field question in the fill flow.
func RenderField(field *entity.FieldDefinition, number, total int) string {
	template := MsgField
	if !strings.Contains(field.Validation, "required") {
		template = MsgFieldOptional
	}

	text := fmt.Sprintf(template, number, total, field.Label)

	if field.Type.TakesOptions() || field.Type == entity.FieldTypeCheckbox {
		text += "\n\n" + MsgChooseOption
	}

	return text
}

// RenderClarification wraps the model's clarification question.
func RenderClarification(clarification string) string {
	return fmt.Sprintf(MsgClarification, clarification)
}

// RenderAnswerRejected lists the violations of a rejected answer.
func RenderAnswerRejected(violations []string) string {
	var sb strings.Builder
	for _, v := range violations {
		sb.WriteString("• " + v + "\n")
	}
	return fmt.Sprintf(MsgAnswerRejected, strings.TrimRight(sb.String(), "\n"))
}

// RenderAnalytics formats form statistics for chat display.
func RenderAnalytics(analytics *entity.FormAnalytics, formTitle string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 %s\n\n", formTitle)
	fmt.Fprintf(&sb, "Заполнений: %d\n", analytics.SubmissionCount)

	if analytics.FirstSubmission != nil {
		fmt.Fprintf(&sb, "Первое: %s\n", analytics.FirstSubmission.Format("02.01.2006 15:04"))
	}
	if analytics.LastSubmission != nil {
		fmt.Fprintf(&sb, "Последнее: %s\n", analytics.LastSubmission.Format("02.01.2006 15:04"))
	}

	if analytics.SubmissionCount > 0 {
		sb.WriteString("\nПо полям:\n")
		for _, f := range analytics.Fields {
			fmt.Fprintf(&sb, "• %s — %d (%d%%)\n", f.Label, f.FilledCount, int(f.FillRate*100))
		}
	}

	return sb.String()
}

// RenderSubmissionSummary echoes the collected answers before they are
// submitted, so the user sees what was recorded.
func RenderSubmissionSummary(form *entity.Form, answers map[string]any) string {
	var sb strings.Builder
	sb.WriteString("📋 Твои ответы:\n\n")

	for _, field := range form.Schema.Fields {
		value := answers[field.Name]
		rendered := ""
		switch v := value.(type) {
		case nil:
			rendered = "—"
		case bool:
			if v {
				rendered = "да"
			} else {
				rendered = "нет"
			}
		default:
			rendered = strings.TrimSpace(fmt.Sprint(v))
			if rendered == "" {
				rendered = "—"
			}
		}
		fmt.Fprintf(&sb, "• %s: %s\n", field.Label, rendered)
	}

	return sb.String()
}

// FormatCreatedAt renders a form timestamp for list buttons.
func FormatCreatedAt(t time.Time) string {
	return t.Format("02.01.2006")
}

// ClassifyError analyzes an error and returns an appropriate user-friendly message
func ClassifyError(err error) string {
	if err == nil {
		return ErrGeneric
	}

	// Check for timeout errors
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrTimeout
	}

	// Check for network errors
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrNetworkIssue
	}

	// Check for syscall errors (connection refused, etc.)
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Err == syscall.ECONNREFUSED {
			return ErrServiceUnavailable
		}
		return ErrNetworkIssue
	}

	// Check error message for common patterns
	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "connection refused"):
		return ErrServiceUnavailable
	case strings.Contains(errMsg, "timeout"):
		return ErrTimeout
	case strings.Contains(errMsg, "network"):
		return ErrNetworkIssue
	case strings.Contains(errMsg, "unavailable"):
		return ErrServiceUnavailable
	case strings.Contains(errMsg, "quota"):
		return ErrQuotaExceeded
	case strings.Contains(errMsg, "form not found"):
		return ErrFormNotFound
	case strings.Contains(errMsg, "session not found"):
		return ErrSessionNotFound
	case strings.Contains(errMsg, "invalid state"):
		return ErrInvalidState
	}

	// Default to generic error
	return ErrGeneric
}
