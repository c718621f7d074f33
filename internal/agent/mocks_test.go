package agent

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Rrens/estate-chat/internal/llm"
)

// recorder is a call-recording capability stub.
type recorder struct {
	mu      sync.Mutex
	name    string
	reply   string
	err     error
	prompts []string
}

func (r *recorder) capability() Capability {
	desc := GeneralChatDescription
	if r.name == RealEstateDB {
		desc = RealEstateDBDescription
	}
	return Capability{
		Name:        r.name,
		Description: desc,
		Invoke: func(ctx context.Context, prompt string) (string, error) {
			r.mu.Lock()
			r.prompts = append(r.prompts, prompt)
			r.mu.Unlock()
			if r.err != nil {
				return "", r.err
			}
			return r.reply, nil
		},
	}
}

func (r *recorder) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.prompts)
}

var errBoom = errors.New("boom")

// keywordClassifier routes metric questions to the database, everything else
// to general chat. It only looks at the question line of the routing prompt.
func keywordClassifier() *llm.MockProvider {
	return &llm.MockProvider{
		CompleteFunc: func(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
			question := req.Prompt
			if i := strings.LastIndex(question, "Question: "); i >= 0 {
				question = question[i+len("Question: "):]
			}
			q := strings.ToLower(question)
			for _, kw := range []string{"price", "area", "region", "m2"} {
				if strings.Contains(q, kw) {
					return &llm.Response{Content: RealEstateDB}, nil
				}
			}
			return &llm.Response{Content: GeneralChat}, nil
		},
	}
}

func fixedClassifier(reply string, err error) *llm.MockProvider {
	return &llm.MockProvider{
		CompleteFunc: func(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
			if err != nil {
				return nil, err
			}
			return &llm.Response{Content: reply}, nil
		},
	}
}
