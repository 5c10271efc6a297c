package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/starfinance/backend/internal/queue"
	"github.com/starfinance/backend/internal/services/identity"
)

// DocumentPrescreenJob runs automated checks over freshly submitted
// identity documents and annotates the record for the reviewing officer.
// It never changes the verification status; decisions stay with officers.
type DocumentPrescreenJob struct {
	identitySvc *identity.Service
}

// NewDocumentPrescreenJob creates the pre-screen job handler
func NewDocumentPrescreenJob(identitySvc *identity.Service) *DocumentPrescreenJob {
	return &DocumentPrescreenJob{identitySvc: identitySvc}
}

// RegisterDocumentPrescreenJobHandlers registers the pre-screen handler
// on its queue
func RegisterDocumentPrescreenJobHandlers(q *queue.Queue, identitySvc *identity.Service) {
	handler := NewDocumentPrescreenJob(identitySvc)
	q.RegisterHandler(identity.QueueDocumentPrescreen, handler.Process)
}

// Process runs the mock document checks and appends the findings as
// notes on the identity record
func (j *DocumentPrescreenJob) Process(ctx context.Context, job queue.Job) error {
	var payload identity.PrescreenPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal prescreen payload: %w", err)
	}

	findings := screenDocuments(payload.DocumentRefs)

	if err := j.identitySvc.AppendNotes(ctx, payload.KYCNumber, findings); err != nil {
		return fmt.Errorf("failed to record prescreen findings for %s: %w", payload.KYCNumber, err)
	}

	log.Printf("document prescreen completed for %s", payload.KYCNumber)
	return nil
}

// screenDocuments is the mock stand-in for a third-party OCR/verification
// provider. It only looks at what was submitted, never at file contents.
func screenDocuments(refs []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Pre-screen: %d document(s) received.", len(refs))
	if len(refs) < 2 {
		sb.WriteString(" Fewer than two documents; officer should request additional proof.")
	} else {
		sb.WriteString(" Automated checks passed.")
	}
	return sb.String()
}
