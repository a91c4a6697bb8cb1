package transform

// Registry returns the warehouse models. The runner resolves execution order
// from Refs, so the slice order here carries no meaning.
func Registry() []Model {
	return []Model{
		{
			Name:            "stg_telegram_messages",
			Schema:          "staging",
			Materialization: View,
			SQL: `
SELECT
    id,
    date,
    COALESCE(message, '') AS message_text,
    from_id,
    chat_id,
    COALESCE(media, FALSE) AS media,
    channel,
    file_path,
    loaded_at,
    COALESCE(message, '') ILIKE '%http%' AS has_url,
    COALESCE(message, '') ILIKE '%#%' AS has_hashtag,
    COALESCE(message, '') ILIKE '%@%' AS has_mention
FROM raw.telegram_messages
WHERE COALESCE(message, '') <> '' OR COALESCE(media, FALSE) IS TRUE`,
		},
		{
			Name:            "dim_channels",
			Schema:          "marts",
			Materialization: Table,
			Refs:            []string{"stg_telegram_messages"},
			SQL: `
SELECT
    ROW_NUMBER() OVER (ORDER BY channel, chat_id) AS channel_id,
    channel,
    chat_id,
    CURRENT_TIMESTAMP AS created_at,
    CURRENT_TIMESTAMP AS updated_at
FROM (
    SELECT DISTINCT channel, chat_id
    FROM staging.stg_telegram_messages
) channels`,
		},
		{
			Name:            "dim_dates",
			Schema:          "marts",
			Materialization: Table,
			Refs:            []string{"stg_telegram_messages"},
			SQL: `
WITH bounds AS (
    SELECT MIN(date)::date AS min_date, MAX(date)::date AS max_date
    FROM staging.stg_telegram_messages
    WHERE date IS NOT NULL
),
spine AS (
    SELECT generate_series(min_date, max_date, INTERVAL '1 day')::date AS date_day
    FROM bounds
    WHERE min_date IS NOT NULL
)
SELECT
    ROW_NUMBER() OVER (ORDER BY date_day) AS date_id,
    date_day,
    EXTRACT(YEAR FROM date_day)::int AS year,
    EXTRACT(MONTH FROM date_day)::int AS month,
    EXTRACT(DAY FROM date_day)::int AS day,
    TO_CHAR(date_day, 'YYYYMMDD')::int AS yyyymmdd,
    TRIM(TO_CHAR(date_day, 'Day')) AS day_name,
    EXTRACT(ISODOW FROM date_day)::int AS day_of_week,
    TRIM(TO_CHAR(date_day, 'Month')) AS month_name,
    DATE_TRUNC('week', date_day)::date AS week_start_date,
    DATE_TRUNC('month', date_day)::date AS month_start_date,
    DATE_TRUNC('quarter', date_day)::date AS quarter_start_date,
    DATE_TRUNC('year', date_day)::date AS year_start_date,
    CURRENT_TIMESTAMP AS created_at,
    CURRENT_TIMESTAMP AS updated_at
FROM spine`,
		},
		{
			Name:            "fct_messages",
			Schema:          "marts",
			Materialization: Table,
			Refs:            []string{"stg_telegram_messages", "dim_channels", "dim_dates"},
			SQL: `
SELECT
    s.id AS message_id,
    dc.channel_id,
    dd.date_id,
    s.message_text,
    s.media,
    s.has_url,
    s.has_hashtag,
    s.has_mention,
    s.date AS message_date,
    CURRENT_TIMESTAMP AS created_at,
    CURRENT_TIMESTAMP AS updated_at
FROM staging.stg_telegram_messages s
LEFT JOIN marts.dim_channels dc
    ON s.channel = dc.channel
   AND s.chat_id IS NOT DISTINCT FROM dc.chat_id
LEFT JOIN marts.dim_dates dd
    ON s.date::date = dd.date_day`,
		},
		{
			Name:            "fct_image_detections",
			Schema:          "marts",
			Materialization: Table,
			Refs:            []string{"fct_messages"},
			SQL: `
SELECT
    d.message_id,
    f.channel_id,
    f.date_id,
    d.object_class,
    d.confidence,
    CURRENT_TIMESTAMP AS created_at,
    CURRENT_TIMESTAMP AS updated_at
FROM raw.image_detections d
LEFT JOIN marts.fct_messages f
    ON d.message_id = f.message_id`,
		},
	}
}

// Checks returns the data-quality assertions run after materialization.
func Checks() []Check {
	return []Check{
		{
			// Always empty by construction of the staging filter; kept as a
			// placeholder until real quality rules land.
			Name: "staged_messages_have_content",
			SQL: `
SELECT id
FROM staging.stg_telegram_messages
WHERE message_text = '' AND media IS NOT TRUE`,
		},
		{
			Name: "dim_channels_no_duplicates",
			SQL: `
SELECT channel
FROM marts.dim_channels
GROUP BY channel, chat_id
HAVING COUNT(*) > 1`,
		},
		{
			Name: "fct_messages_unique_message_id",
			SQL: `
SELECT message_id
FROM marts.fct_messages
GROUP BY message_id
HAVING COUNT(*) > 1`,
		},
		{
			Name: "dim_dates_no_gaps",
			SQL: `
SELECT row_count, expected
FROM (
    SELECT COUNT(*) AS row_count,
           MAX(date_day) - MIN(date_day) + 1 AS expected
    FROM marts.dim_dates
) spine
WHERE row_count > 0 AND row_count <> expected`,
		},
	}
}
