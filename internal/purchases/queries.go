package purchases

const createPurchaseEventsTableSQL = `
CREATE TABLE IF NOT EXISTS purchase_events (
	event_id TEXT PRIMARY KEY,
	processed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

const queryMarkProcessed = `
	INSERT INTO purchase_events (event_id)
	VALUES ($1)
	ON CONFLICT (event_id) DO NOTHING`

const queryUnmarkEvent = `
	DELETE FROM purchase_events
	WHERE event_id = $1`
