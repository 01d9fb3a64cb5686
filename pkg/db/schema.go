package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Study sets: one row per generated set, plus study progress
CREATE TABLE IF NOT EXISTS study_sets (
    set_id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    source_url TEXT,
    content TEXT NOT NULL DEFAULT '',
    is_selection BOOLEAN DEFAULT 0,
    was_truncated BOOLEAN DEFAULT 0,
    language TEXT,

    -- Top keywords as JSON array: ["word1", "word2", ...]
    keywords TEXT,

    -- Generation metadata
    source TEXT NOT NULL,
    provider TEXT,
    character_count INTEGER DEFAULT 0,
    sentence_count INTEGER DEFAULT 0,
    generated_at TIMESTAMP,

    created_at TIMESTAMP NOT NULL,
    last_studied TIMESTAMP,
    cards_studied INTEGER DEFAULT 0,
    cards_correct INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_study_sets_created ON study_sets(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_study_sets_source_url ON study_sets(source_url);

-- Summaries: one row per detail level
CREATE TABLE IF NOT EXISTS summaries (
    set_id TEXT NOT NULL,
    level TEXT NOT NULL,
    text TEXT NOT NULL,
    key_points TEXT,
    FOREIGN KEY (set_id) REFERENCES study_sets(set_id) ON DELETE CASCADE,
    PRIMARY KEY (set_id, level)
);

CREATE TABLE IF NOT EXISTS flashcards (
    card_id TEXT PRIMARY KEY,
    set_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    question TEXT NOT NULL,
    answer TEXT NOT NULL,
    category TEXT,
    difficulty TEXT,
    known BOOLEAN DEFAULT 0,
    FOREIGN KEY (set_id) REFERENCES study_sets(set_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_flashcards_set ON flashcards(set_id, position);
CREATE INDEX IF NOT EXISTS idx_flashcards_known ON flashcards(known) WHERE known = 1;

CREATE TABLE IF NOT EXISTS quiz_questions (
    question_id TEXT PRIMARY KEY,
    set_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    question TEXT NOT NULL,
    type TEXT NOT NULL,
    -- Options as JSON array
    options TEXT NOT NULL,
    correct_answer_index INTEGER NOT NULL,
    difficulty TEXT,
    FOREIGN KEY (set_id) REFERENCES study_sets(set_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_quiz_set ON quiz_questions(set_id, position);

-- Usage: proxy generations per calendar month (YYYY-MM, UTC)
CREATE TABLE IF NOT EXISTS usage (
    month TEXT PRIMARY KEY,
    count INTEGER NOT NULL DEFAULT 0,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`
