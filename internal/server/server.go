package server

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/Sarvveshp/Face-Recognition-Rag/internal/config"
	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core"
	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core/chunker"
	"github.com/Sarvveshp/Face-Recognition-Rag/internal/driver"
	"github.com/Sarvveshp/Face-Recognition-Rag/internal/face"
	"github.com/Sarvveshp/Face-Recognition-Rag/internal/llm"
	"github.com/Sarvveshp/Face-Recognition-Rag/internal/store"
)

type Server struct {
	Engine  *core.Engine
	Store   store.RecordStore
	Encoder face.Encoder
	Matcher *face.Matcher

	closers []io.Closer
}

// New assembles a server from already built parts.
func New(st store.RecordStore, engine *core.Engine, enc face.Encoder, matcher *face.Matcher) *Server {
	return &Server{Engine: engine, Store: st, Encoder: enc, Matcher: matcher}
}

// NewServer opens the configured store and providers and wires the engine.
// The index is not built; call Engine.Rebuild before serving.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	st, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	llmClient, embedderClient, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		_ = st.Close(ctx)
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	var closers []io.Closer
	if cl, ok := llmClient.(io.Closer); ok {
		closers = append(closers, cl)
	}
	if cl, ok := embedderClient.(io.Closer); ok && any(embedderClient) != any(llmClient) {
		closers = append(closers, cl)
	}

	guard := llm.NewGuard(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, cfg.LLM.Timeout())
	gen := guard.Generator(llmClient)
	emb := guard.Embedder(embedderClient)

	opts := []core.Option{
		core.WithChunker(chunker.New(
			chunker.WithChunkSize(cfg.RAG.ChunkSize),
			chunker.WithOverlap(cfg.RAG.ChunkOverlap),
			chunker.WithSeparator(cfg.RAG.Separator),
		)),
		core.WithTopK(cfg.RAG.TopK),
		core.WithHistoryLimit(cfg.RAG.HistoryLimit),
		core.WithEventLimit(cfg.RAG.EventLimit),
		core.WithEmbedBatchSize(cfg.RAG.EmbedBatchSize),
		core.WithSystemPrompt(cfg.Prompts.System),
	}
	if cfg.RAG.Rerank {
		opts = append(opts, core.WithReranker(llm.NewSimpleLLMReranker(gen)))
	}

	engine := core.NewEngine(st, emb, gen, opts...)
	s := New(st, engine, face.NewHashEncoder(cfg.Face.Dimensions), face.NewMatcher(cfg.Face.Tolerance))
	s.closers = closers
	return s, nil
}

// OpenStore builds the record store for the configured backend.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (store.RecordStore, error) {
	switch cfg.Backend {
	case "memory", "":
		return store.NewMemoryStore(), nil
	case "sqlite":
		st, err := store.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "memgraph":
		d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Memgraph: %w", err)
		}
		st, err := store.NewGraphStore(ctx, d)
		if err != nil {
			_ = d.Close(ctx)
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Backend)
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/", s.Root)
	r.GET("/health", s.Health)

	r.POST("/register-face", s.RegisterFace)
	r.POST("/recognize-faces", s.RecognizeFaces)
	r.DELETE("/delete-face/:id", s.DeleteFace)
	r.GET("/faces", s.ListFaces)
	r.GET("/events", s.ListEvents)

	r.POST("/answer-question", s.AnswerQuestion)
	r.POST("/refresh-rag", s.RefreshRAG)
	r.POST("/clear-chat-history", s.ClearChatHistory)
	r.GET("/rag-status", s.RAGStatus)

	return r
}

func (s *Server) Close(ctx context.Context) error {
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			log.Printf("Failed to close provider client: %v", err)
		}
	}
	return s.Store.Close(ctx)
}
