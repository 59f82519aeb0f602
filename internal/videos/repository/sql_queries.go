package repository

const (
	getVideoByIDQuery = `SELECT video_id, client_id, file_name, s3_key, s3_bucket, format, duration, status, created_at, updated_at
					FROM video_files WHERE video_id = $1`
)
