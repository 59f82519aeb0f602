package repository

const (
	jobColumns = `job_id, video_id, client_id, edit_state, outputs, status, progress,
					COALESCE(error_message, '') AS error_message, created_at, started_at, completed_at`

	createJobQuery = `INSERT INTO export_jobs (job_id, video_id, client_id, edit_state, outputs, status, progress)
					VALUES ($1, $2, $3, $4, $5, $6, $7)
					RETURNING ` + jobColumns

	getJobByIDQuery = `SELECT ` + jobColumns + ` FROM export_jobs WHERE job_id = $1`

	getJobsByVideoQuery = `SELECT ` + jobColumns + ` FROM export_jobs
					WHERE video_id = $1 AND client_id = $2 ORDER BY created_at DESC LIMIT $3`

	fetchPendingJobsQuery = `SELECT ` + jobColumns + ` FROM export_jobs
					WHERE status = 'pending' ORDER BY created_at ASC LIMIT $1`

	countPendingJobsQuery = `SELECT COUNT(job_id) FROM export_jobs WHERE status = 'pending'`

	claimJobQuery = `UPDATE export_jobs SET status = 'processing', started_at = now()
					WHERE job_id = $1 AND status = 'pending'
					RETURNING ` + jobColumns

	updateJobStatusQuery = `UPDATE export_jobs
					SET status = $2,
					    progress = COALESCE($3, progress),
					    error_message = COALESCE($4, error_message),
					    outputs = COALESCE($5, outputs),
					    completed_at = COALESCE($6, completed_at)
					WHERE job_id = $1`
)
