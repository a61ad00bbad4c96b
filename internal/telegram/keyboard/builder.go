package keyboard

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/formloom/forms-backend/internal/entity"
)

// Builder creates inline keyboards
type Builder struct{}

// NewBuilder creates a keyboard builder
func NewBuilder() *Builder {
	return &Builder{}
}

// StartKeyboard creates the initial menu buttons
func (b *Builder) StartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🆕 Создать форму", "action:new"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Мои формы", "action:list"),
		),
	)
}

// FormPreviewKeyboard creates buttons under a generated form preview
func (b *Builder) FormPreviewKeyboard(formID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Заполнить", "fill:"+formID),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Статистика", "stats:"+formID),
			tgbotapi.NewInlineKeyboardButtonData("📥 Экспорт", "export:"+formID),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Описать заново", "action:new"),
		),
	)
}

// FormListKeyboard creates one button per form (max 10 recent)
func (b *Builder) FormListKeyboard(forms []Form) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}

	count := len(forms)
	if count > 10 {
		count = 10
	}

	for i := 0; i < count; i++ {
		form := forms[i]
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				form.Title,
				"form:"+form.ID,
			),
		))
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🆕 Создать форму", "action:new"),
	))

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// OptionsKeyboard creates one button per option for radio and selectbox
// fields. Values are addressed by index so long option texts fit into
// Telegram's 64-byte callback data limit.
func (b *Builder) OptionsKeyboard(options []string, skippable bool) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}

	for i, option := range options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(option, "opt:"+strconv.Itoa(i)),
		))
	}

	if skippable {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏭ Пропустить", "skip:field"),
		))
	}

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// CheckboxKeyboard creates yes/no buttons for checkbox fields
func (b *Builder) CheckboxKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Да", "chk:yes"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Нет", "chk:no"),
		),
	)
}

// SkipKeyboard creates a lone skip button for optional text fields
func (b *Builder) SkipKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏭ Пропустить", "skip:field"),
		),
	)
}

// ExportKeyboard creates one button per export format
func (b *Builder) ExportKeyboard() tgbotapi.InlineKeyboardMarkup {
	labels := []struct {
		text   string
		format entity.ExportFormat
	}{
		{"📄 .csv", entity.FormatCSV},
		{"📝 .md", entity.FormatMarkdown},
		{"📕 .pdf", entity.FormatPDF},
		{"📘 .docx", entity.FormatDOCX},
		{"📊 .xlsx", entity.FormatXLSX},
	}

	rows := [][]tgbotapi.InlineKeyboardButton{}
	for i := 0; i < len(labels); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(labels[i].text, "dl:"+string(labels[i].format)),
		}
		if i+1 < len(labels) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(labels[i+1].text, "dl:"+string(labels[i+1].format)))
		}
		rows = append(rows, row)
	}

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// ConfirmCancelKeyboard creates the cancel confirmation buttons
func (b *Builder) ConfirmCancelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Да, завершить", "confirm:cancel"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Нет, продолжить", "confirm:continue"),
		),
	)
}

// Form represents a form for keyboard building
type Form struct {
	ID    string
	Title string
}
