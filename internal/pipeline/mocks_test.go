package pipeline

import (
	"context"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/pgvector/pgvector-go"

	"minbar/internal/models"
	"minbar/internal/services"
	"minbar/internal/store"
	"minbar/internal/tasks"
)

// --- Mock detector ---

type mockDetector struct {
	scores *models.ModerationScores
	err    error
	texts  []string
}

func (m *mockDetector) Detect(ctx context.Context, text string) (*models.ModerationScores, error) {
	m.texts = append(m.texts, text)
	if m.err != nil {
		return nil, m.err
	}
	return m.scores, nil
}

// --- Mock content store ---

type mockContentStore struct {
	contents map[uuid.UUID]*models.Content

	deleted    []uuid.UUID
	processed  []uuid.UUID
	tagged     map[uuid.UUID]models.Language
	embeddings map[uuid.UUID]pgvector.Vector

	unprocessed []*models.Content

	getErr          error
	deleteErr       error
	markErr         error
	setTaggedErr    error
	setEmbeddingErr error
	listErr         error
}

func newMockContentStore(contents ...*models.Content) *mockContentStore {
	s := &mockContentStore{
		contents:   make(map[uuid.UUID]*models.Content),
		tagged:     make(map[uuid.UUID]models.Language),
		embeddings: make(map[uuid.UUID]pgvector.Vector),
	}
	for _, c := range contents {
		s.contents[c.ID] = c
	}
	return s
}

func (m *mockContentStore) CreateContent(ctx context.Context, content *models.Content) error {
	if content.ID == uuid.Nil {
		content.ID = uuid.New()
	}
	m.contents[content.ID] = content
	return nil
}

func (m *mockContentStore) GetContent(ctx context.Context, id uuid.UUID) (*models.Content, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	content, ok := m.contents[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return content, nil
}

func (m *mockContentStore) DeleteContent(ctx context.Context, id uuid.UUID) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	delete(m.contents, id)
	return nil
}

func (m *mockContentStore) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.processed = append(m.processed, id)
	return nil
}

func (m *mockContentStore) SetTagged(ctx context.Context, id uuid.UUID, language models.Language) error {
	if m.setTaggedErr != nil {
		return m.setTaggedErr
	}
	m.tagged[id] = language
	return nil
}

func (m *mockContentStore) SetEmbedding(ctx context.Context, id uuid.UUID, embedding pgvector.Vector) error {
	if m.setEmbeddingErr != nil {
		return m.setEmbeddingErr
	}
	m.embeddings[id] = embedding
	return nil
}

func (m *mockContentStore) ListUnprocessed(ctx context.Context, limit int) ([]*models.Content, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.unprocessed, nil
}

func (m *mockContentStore) Ping(ctx context.Context) error { return nil }

// --- Mock moderation store ---

type mockModerationStore struct {
	reports   []*models.ModerationReport
	createErr error
}

func (m *mockModerationStore) CreateReport(ctx context.Context, report *models.ModerationReport) error {
	if m.createErr != nil {
		return m.createErr
	}
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	m.reports = append(m.reports, report)
	return nil
}

func (m *mockModerationStore) GetReport(ctx context.Context, id uuid.UUID) (*models.ModerationReport, error) {
	for _, r := range m.reports {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockModerationStore) ListReports(ctx context.Context, limit, offset int) ([]*models.ModerationReport, error) {
	return m.reports, nil
}

// --- Mock tag store ---

type mockTagStore struct {
	nextID      int64
	contentTags map[uuid.UUID][]*models.Tag
	profileTags map[uuid.UUID][]*models.Tag

	contentLinks map[uuid.UUID][]int64
	profileLinks map[uuid.UUID][]int64

	getOrCreateErr error
	getErr         error
}

func newMockTagStore() *mockTagStore {
	return &mockTagStore{
		nextID:       1,
		contentTags:  make(map[uuid.UUID][]*models.Tag),
		profileTags:  make(map[uuid.UUID][]*models.Tag),
		contentLinks: make(map[uuid.UUID][]int64),
		profileLinks: make(map[uuid.UUID][]int64),
	}
}

func (m *mockTagStore) GetOrCreateTags(ctx context.Context, proposed []models.Tag) ([]*models.Tag, error) {
	if m.getOrCreateErr != nil {
		return nil, m.getOrCreateErr
	}
	out := make([]*models.Tag, 0, len(proposed))
	for _, p := range proposed {
		tag := p
		tag.ID = m.nextID
		m.nextID++
		out = append(out, &tag)
	}
	return out, nil
}

func (m *mockTagStore) AddTagsToContent(ctx context.Context, contentID uuid.UUID, tagIDs []int64) error {
	m.contentLinks[contentID] = append(m.contentLinks[contentID], tagIDs...)
	return nil
}

func (m *mockTagStore) AddTagsToProfile(ctx context.Context, profileID uuid.UUID, tagIDs []int64) error {
	m.profileLinks[profileID] = append(m.profileLinks[profileID], tagIDs...)
	return nil
}

func (m *mockTagStore) GetContentTags(ctx context.Context, contentID uuid.UUID) ([]*models.Tag, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.contentTags[contentID], nil
}

func (m *mockTagStore) GetProfileTags(ctx context.Context, profileID uuid.UUID) ([]*models.Tag, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.profileTags[profileID], nil
}

// --- Mock profile store ---

type mockProfileStore struct {
	profiles           map[uuid.UUID]*models.Profile
	interestEmbeddings map[uuid.UUID]pgvector.Vector
	setErr             error
}

func newMockProfileStore(profiles ...*models.Profile) *mockProfileStore {
	s := &mockProfileStore{
		profiles:           make(map[uuid.UUID]*models.Profile),
		interestEmbeddings: make(map[uuid.UUID]pgvector.Vector),
	}
	for _, p := range profiles {
		s.profiles[p.ID] = p
	}
	return s
}

func (m *mockProfileStore) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (m *mockProfileStore) SetInterestEmbedding(ctx context.Context, id uuid.UUID, embedding pgvector.Vector) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.interestEmbeddings[id] = embedding
	return nil
}

// --- Mock job client ---

type mockJobClient struct {
	processMsgs  []tasks.PipelineMessage
	tagMsgs      []tasks.PipelineMessage
	embedMsgs    []tasks.PipelineMessage
	interestIDs  []uuid.UUID
	seedMsgs     []tasks.SeedInterestsMessage
	processErr   error
	tagErr       error
	embedErr     error
	interestsErr error
}

func (m *mockJobClient) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	return &asynq.TaskInfo{}, nil
}

func (m *mockJobClient) EnqueueProcessContent(ctx context.Context, msg tasks.PipelineMessage) error {
	if m.processErr != nil {
		return m.processErr
	}
	m.processMsgs = append(m.processMsgs, msg)
	return nil
}

func (m *mockJobClient) EnqueueTagContent(ctx context.Context, msg tasks.PipelineMessage) error {
	if m.tagErr != nil {
		return m.tagErr
	}
	m.tagMsgs = append(m.tagMsgs, msg)
	return nil
}

func (m *mockJobClient) EnqueueEmbedContent(ctx context.Context, msg tasks.PipelineMessage) error {
	if m.embedErr != nil {
		return m.embedErr
	}
	m.embedMsgs = append(m.embedMsgs, msg)
	return nil
}

func (m *mockJobClient) EnqueueInterestsUpdate(ctx context.Context, profileID uuid.UUID) error {
	if m.interestsErr != nil {
		return m.interestsErr
	}
	m.interestIDs = append(m.interestIDs, profileID)
	return nil
}

func (m *mockJobClient) EnqueueSeedInterests(ctx context.Context, msg tasks.SeedInterestsMessage) error {
	m.seedMsgs = append(m.seedMsgs, msg)
	return nil
}

func (m *mockJobClient) Close() error { return nil }

// --- Mock notifier ---

type notifiedDeletion struct {
	content *models.Content
	report  *models.ModerationReport
}

type notifiedMatch struct {
	jobPosting *models.Content
	candidates []models.MatchResult
}

type mockNotifier struct {
	deletions  []notifiedDeletion
	matches    []notifiedMatch
	deletedErr error
	matchErr   error
}

func (m *mockNotifier) NotifyContentDeleted(ctx context.Context, content *models.Content, report *models.ModerationReport) error {
	if m.deletedErr != nil {
		return m.deletedErr
	}
	m.deletions = append(m.deletions, notifiedDeletion{content: content, report: report})
	return nil
}

func (m *mockNotifier) NotifyJobMatch(ctx context.Context, jobPosting *models.Content, candidates []models.MatchResult) error {
	if m.matchErr != nil {
		return m.matchErr
	}
	m.matches = append(m.matches, notifiedMatch{jobPosting: jobPosting, candidates: candidates})
	return nil
}

// --- Mock tagger ---

type mockTagger struct {
	result       *services.TaggingResult
	translations []services.TagProposal
	err          error

	generateCalls  int
	translateCalls int
	lastExisting   []string
}

func (m *mockTagger) GenerateTags(ctx context.Context, title, content string, existingTags []string) (*services.TaggingResult, error) {
	m.generateCalls++
	m.lastExisting = existingTags
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockTagger) TranslateTags(ctx context.Context, rawTags []string) ([]services.TagProposal, error) {
	m.translateCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.translations, nil
}

// --- Mock embedder ---

type mockEmbedder struct {
	vector pgvector.Vector
	err    error
	texts  []string
}

func (m *mockEmbedder) GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	m.texts = append(m.texts, text)
	if m.err != nil {
		return pgvector.Vector{}, m.err
	}
	return m.vector, nil
}

// --- Mock ranker ---

type mockRanker struct {
	results []models.MatchResult
	err     error
	queries []pgvector.Vector
}

func (m *mockRanker) RankProfiles(ctx context.Context, query pgvector.Vector) ([]models.MatchResult, error) {
	m.queries = append(m.queries, query)
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}
