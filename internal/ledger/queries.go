package ledger

const (
	createTablesSQL = `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email TEXT NOT NULL UNIQUE,
			credits NUMERIC NOT NULL DEFAULT 0 CHECK (credits >= 0),
			last_hourly_credit TIMESTAMPTZ,
			subscription_tier TEXT NOT NULL DEFAULT 'free',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			transaction_type TEXT NOT NULL
				CHECK (transaction_type IN ('hourly_grant', 'usage', 'purchase')),
			amount NUMERIC NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_transactions_user_id ON transactions(user_id);
		CREATE TABLE IF NOT EXISTS credit_usage (
			id BIGSERIAL PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			credits_used NUMERIC NOT NULL,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			is_byollm BOOLEAN NOT NULL DEFAULT FALSE,
			book_title TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_credit_usage_user_id ON credit_usage(user_id);
	`

	userColumns = `id, email, credits, last_hourly_credit, subscription_tier, created_at`

	queryFindOrCreateByEmail = `
		INSERT INTO users (email)
		VALUES ($1)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING ` + userColumns

	queryGetByID = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`

	queryUserExists = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`

	// the eligibility check is part of the UPDATE itself: zero rows matched
	// means another request already claimed this hour's grant
	queryGrantHourly = `
		UPDATE users
		SET credits = credits + $2, last_hourly_credit = NOW()
		WHERE id = $1
		  AND (last_hourly_credit IS NULL OR last_hourly_credit <= NOW() - INTERVAL '1 hour')
		RETURNING ` + userColumns

	// conditional decrement: zero rows matched on an existing user means the
	// balance would have gone negative
	queryDebit = `
		UPDATE users
		SET credits = credits - $2
		WHERE id = $1 AND credits >= $2
		RETURNING ` + userColumns

	queryCredit = `
		UPDATE users
		SET credits = credits + $2
		WHERE id = $1
		RETURNING ` + userColumns

	queryInsertTransaction = `
		INSERT INTO transactions (user_id, transaction_type, amount, description)
		VALUES ($1, $2, $3, $4)
	`

	queryInsertUsageRecord = `
		INSERT INTO credit_usage (user_id, credits_used, provider, model, is_byollm, book_title)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	queryTransactions = `
		SELECT id, user_id, transaction_type, amount, description, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
)
