package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"samvaad.app/intake/internal/http/handler"
	"samvaad.app/intake/internal/model"
	"samvaad.app/intake/internal/service"
)

var _ = Describe("MessageHandler", func() {
	var (
		router *gin.Engine
		svc    *mockIngestService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockIngestService{}
		h := handler.NewMessageHandler(svc, "X-Trace-Id")
		router.POST("/messages", h.Ingest)
	})

	post := func(body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("returns 202 with the stored message id", func() {
		svc.ingestFn = func(_ context.Context, _ model.Envelope, _ *string) (*service.IngestResult, error) {
			return &service.IngestResult{MessageID: 99, Enqueued: true}, nil
		}

		body, _ := json.Marshal(map[string]any{
			"channel":             "whatsapp",
			"sender_id":           "+919800000001",
			"text":                "laid pipes today",
			"external_message_id": "wamid.1",
		})

		w := post(body)

		Expect(w.Code).To(Equal(http.StatusAccepted))
		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["message_id"]).To(BeEquivalentTo(99))
		Expect(resp["enqueued"]).To(BeTrue())
	})

	It("maps the media block onto the envelope", func() {
		body, _ := json.Marshal(map[string]any{
			"channel":             "whatsapp",
			"sender_id":           "+919800000001",
			"external_message_id": "wamid.2",
			"media": map[string]any{
				"mime_type": "image/jpeg",
				"url":       "https://cdn.example/p.jpg",
				"filename":  "p.jpg",
			},
		})

		w := post(body)

		Expect(w.Code).To(Equal(http.StatusAccepted))
		Expect(svc.lastEnv.Media).NotTo(BeNil())
		Expect(svc.lastEnv.Media.URL).To(Equal("https://cdn.example/p.jpg"))
	})

	It("returns 400 when required fields are missing", func() {
		body, _ := json.Marshal(map[string]any{"text": "hi"})

		w := post(body)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("returns 400 for envelopes the service rejects", func() {
		svc.ingestFn = func(_ context.Context, _ model.Envelope, _ *string) (*service.IngestResult, error) {
			return nil, service.ErrInvalidEnvelope
		}

		body, _ := json.Marshal(map[string]any{
			"channel":             "whatsapp",
			"sender_id":           "+919800000001",
			"external_message_id": "wamid.3",
		})

		w := post(body)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("returns 500 when the service fails", func() {
		svc.ingestFn = func(_ context.Context, _ model.Envelope, _ *string) (*service.IngestResult, error) {
			return nil, errors.New("redis down")
		}

		body, _ := json.Marshal(map[string]any{
			"channel":             "whatsapp",
			"sender_id":           "+919800000001",
			"text":                "hello",
			"external_message_id": "wamid.4",
		})

		w := post(body)

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
	})
})
