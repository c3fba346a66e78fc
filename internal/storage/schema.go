package storage

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id               UUID PRIMARY KEY,
	role             TEXT NOT NULL DEFAULT 'user',
	points           INTEGER NOT NULL CONSTRAINT users_points_check CHECK (points >= 0),
	total_swaps      INTEGER NOT NULL DEFAULT 0,
	successful_swaps INTEGER NOT NULL DEFAULT 0,
	items_listed     INTEGER NOT NULL DEFAULT 0,
	points_earned    INTEGER NOT NULL DEFAULT 0,
	points_spent     INTEGER NOT NULL DEFAULT 0,
	rating_average   DOUBLE PRECISION NOT NULL DEFAULT 5.0,
	rating_count     INTEGER NOT NULL DEFAULT 0,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS items (
	id           UUID PRIMARY KEY,
	owner_id     UUID NOT NULL REFERENCES users (id),
	title        TEXT NOT NULL,
	description  TEXT NOT NULL,
	category     TEXT NOT NULL,
	type         TEXT NOT NULL DEFAULT '',
	size         TEXT NOT NULL DEFAULT '',
	condition    TEXT NOT NULL,
	color        TEXT NOT NULL,
	brand        TEXT NOT NULL DEFAULT '',
	tags         TEXT[] NOT NULL DEFAULT '{}',
	images       TEXT[] NOT NULL,
	points_value INTEGER NOT NULL CHECK (points_value >= 0),
	status       TEXT NOT NULL DEFAULT 'available',
	views        INTEGER NOT NULL DEFAULT 0,
	favorited    INTEGER NOT NULL DEFAULT 0,
	city         TEXT NOT NULL DEFAULT '',
	state        TEXT NOT NULL DEFAULT '',
	country      TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS items_status_category_idx ON items (status, category, size);
CREATE INDEX IF NOT EXISTS items_owner_idx ON items (owner_id);

CREATE TABLE IF NOT EXISTS favorites (
	user_id    UUID NOT NULL REFERENCES users (id),
	item_id    UUID NOT NULL REFERENCES items (id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, item_id)
);

CREATE TABLE IF NOT EXISTS swap_requests (
	id                UUID PRIMARY KEY,
	requester_id      UUID NOT NULL REFERENCES users (id),
	item_owner_id     UUID NOT NULL REFERENCES users (id),
	requested_item_id UUID NOT NULL,
	swap_type         TEXT NOT NULL,
	offered_item_id   UUID,
	points_offered    INTEGER NOT NULL DEFAULT 0,
	message           TEXT NOT NULL DEFAULT '',
	response_message  TEXT NOT NULL DEFAULT '',
	review            TEXT NOT NULL DEFAULT '',
	status            TEXT NOT NULL DEFAULT 'pending',
	expires_at        TIMESTAMPTZ NOT NULL,
	accepted_at       TIMESTAMPTZ,
	completed_at      TIMESTAMPTZ,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CHECK ((swap_type = 'item-for-item' AND offered_item_id IS NOT NULL AND points_offered = 0)
		OR (swap_type = 'points-for-item' AND offered_item_id IS NULL AND points_offered >= 1))
);

CREATE UNIQUE INDEX IF NOT EXISTS swap_requests_one_pending_idx
	ON swap_requests (requester_id, requested_item_id) WHERE status = 'pending';
CREATE INDEX IF NOT EXISTS swap_requests_requested_item_idx ON swap_requests (requested_item_id, status);
CREATE INDEX IF NOT EXISTS swap_requests_pending_expiry_idx ON swap_requests (expires_at) WHERE status = 'pending';
CREATE INDEX IF NOT EXISTS swap_requests_requester_idx ON swap_requests (requester_id, created_at DESC);
CREATE INDEX IF NOT EXISTS swap_requests_owner_idx ON swap_requests (item_owner_id, created_at DESC);
`
