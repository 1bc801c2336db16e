package usecase

import (
	"fmt"
	"strings"

	"github.com/tkohara/gikai-assistant/internal/core/domain"
)

// buildAnswerPrompt composes the drafting instruction. Each selected
// candidate is embedded with its reference ID so the generated answer
// can cite its sources; citation presence is a prompting convention,
// not something the pipeline validates afterwards.
func buildAnswerPrompt(question string, candidates []domain.Candidate) string {
	parts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		parts = append(parts, fmt.Sprintf("[参照ID:%s] 内容: %s", c.ID, c.Content))
	}
	contextText := strings.Join(parts, "\n\n")

	return fmt.Sprintf(`あなたは自治体職員です。以下の資料に基づいて、質問に対する答弁案を作成してください。

【資料】
%s

【質問】
%s

【出力要件】
- 議会答弁らしい丁寧な口調で。
- 必ず引用元の[参照ID]を明記すること。
`, contextText, question)
}
