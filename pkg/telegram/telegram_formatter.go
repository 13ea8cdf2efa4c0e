package telegram

import (
	"fmt"
	"strings"
	"time"

	"golang-stock-signal/internal/entity"
	"golang-stock-signal/internal/executor/dto"
	"golang-stock-signal/pkg/utils"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// FormatRecommendationMessage renders a persisted recommendation for the chat.
func FormatRecommendationMessage(rec *entity.Recommendation) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("📊 *%s* 🟢 BUY\n\n", escape(rec.Symbol)))
	sb.WriteString(fmt.Sprintf("• 💵 Price: %s ₫\n", formatPrice(rec.RecommendedPrice)))
	sb.WriteString(fmt.Sprintf("• 🎯 Target: %s ₫ (%s)\n", formatPrice(rec.TargetPrice), formatChange(rec.RecommendedPrice, rec.TargetPrice)))
	sb.WriteString(fmt.Sprintf("• 🛡 Stop Loss: %s ₫ (%s)\n", formatPrice(rec.StopLoss), formatChange(rec.RecommendedPrice, rec.StopLoss)))
	if risk := rec.RecommendedPrice - rec.StopLoss; risk > 0 {
		sb.WriteString(fmt.Sprintf("• 🔁 Risk/Reward: %.2f\n", (rec.TargetPrice-rec.RecommendedPrice)/risk))
	}
	sb.WriteString(fmt.Sprintf("• 📊 Confidence: %d%%\n", rec.Confidence))
	sb.WriteString(fmt.Sprintf("• 🔧 Technical %.0f / Fundamental %.0f\n\n", rec.TechnicalScore, rec.FundamentalScore))

	writeList(&sb, "🔧 *Technical:*", rec.TechnicalAnalysis)
	writeList(&sb, "🏦 *Fundamental:*", rec.FundamentalAnalysis)
	writeList(&sb, "⚠️ *Risks:*", rec.Risks)
	writeList(&sb, "🚀 *Opportunities:*", rec.Opportunities)

	sb.WriteString(fmt.Sprintf("📅 _%s_\n", utils.PrettyDate(rec.CreatedAt)))
	return sb.String()
}

// FormatRunSummaryMessage renders a short digest of a pipeline run.
func FormatRunSummaryMessage(report *dto.RunReport) string {
	var sb strings.Builder
	sb.WriteString("📈 *Signal run finished*\n")
	sb.WriteString(fmt.Sprintf("🆔 `%s`\n", report.RunID))
	sb.WriteString(fmt.Sprintf("⏱ %s\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Second)))
	sb.WriteString(fmt.Sprintf("✅ %s classified, 💾 %s persisted, ❌ %s failed\n",
		humanize.Comma(int64(len(report.Results))),
		humanize.Comma(int64(len(report.Persisted))),
		humanize.Comma(int64(len(report.Failures)))))
	for _, p := range report.Persisted {
		sb.WriteString(fmt.Sprintf("• %s\n", escape(p.Symbol)))
	}
	return sb.String()
}

func FormatErrorAlertMessage(time time.Time, errType string, errMsg string, data string) string {
	return fmt.Sprintf(`📛 [ERROR ALERT]
%s
🔧 %s
⚠️ %s

📄 Data: %s
`, utils.PrettyDate(time), escape(errType), escape(errMsg), escape(data))
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(title + "\n")
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("• %s\n", escape(item)))
	}
	sb.WriteString("\n")
}

// escape neutralises Markdown markers in free text; the client sends ModeMarkdown.
func escape(text string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, text)
}

// VND prices carry no decimals.
func formatPrice(v float64) string {
	return humanize.Comma(int64(v + 0.5))
}

func formatChange(from, to float64) string {
	if from == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", (to-from)/from*100)
}
