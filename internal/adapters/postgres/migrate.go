package postgres

import "context"

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL CHECK (role IN ('USER', 'ORGANIZER')),
	referral_code TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS categories (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS locations (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS events (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL CHECK (type IN ('FREE', 'PAID')),
	price BIGINT NOT NULL CHECK (price >= 0),
	start_date TIMESTAMPTZ NOT NULL,
	available_seat INT NOT NULL CHECK (available_seat >= 0),
	organizer_id UUID NOT NULL REFERENCES users(id),
	category_id UUID NOT NULL REFERENCES categories(id),
	location_id UUID NOT NULL REFERENCES locations(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS promotions (
	id UUID PRIMARY KEY,
	event_id UUID NOT NULL UNIQUE REFERENCES events(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	referral_code TEXT NOT NULL,
	discount BIGINT NOT NULL CHECK (discount >= 0),
	type TEXT NOT NULL,
	usage_limit INT NOT NULL CHECK (usage_limit >= 0),
	used_count INT NOT NULL DEFAULT 0 CHECK (used_count >= 0 AND used_count <= usage_limit),
	is_active BOOL NOT NULL DEFAULT true,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS transactions (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users(id),
	event_id UUID NOT NULL REFERENCES events(id),
	total_amount BIGINT NOT NULL CHECK (total_amount >= 0),
	discount BIGINT NOT NULL DEFAULT 0,
	referral_code TEXT,
	promotion_id UUID REFERENCES promotions(id),
	payment_status TEXT NOT NULL CHECK (payment_status IN ('PENDING', 'VERIFICATION', 'COMPLETED')),
	payment_proof TEXT,
	reminded_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tickets (
	id UUID PRIMARY KEY,
	event_id UUID NOT NULL REFERENCES events(id),
	transaction_id UUID NOT NULL REFERENCES transactions(id),
	user_id UUID NOT NULL REFERENCES users(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS tickets_event_user_idx ON tickets (event_id, user_id);

CREATE TABLE IF NOT EXISTS ratings (
	id UUID PRIMARY KEY,
	event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	user_id UUID NOT NULL REFERENCES users(id),
	rating INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
	comment TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS outbox (
	id UUID PRIMARY KEY,
	aggregate_type TEXT NOT NULL,
	aggregate_id UUID NOT NULL,
	event_type TEXT NOT NULL,
	payload_json JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	published_at TIMESTAMPTZ,
	status TEXT NOT NULL DEFAULT 'NEW',
	dedupe_key TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS outbox_status_idx ON outbox (status, created_at);
`

// Migrate applies the schema. Statements are idempotent so every binary can
// run it at startup.
func (r *Repository) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, schema)
	return err
}
