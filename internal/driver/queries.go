package driver

const (
	// InsertPersonQuery returns no row when the name is already taken.
	InsertPersonQuery = `
		OPTIONAL MATCH (existing:Person {name: $name})
		WITH existing
		WHERE existing IS NULL
		CREATE (p:Person {
			id: $id,
			name: $name,
			encoding: $encoding,
			metadata: $metadata,
			created_at: $created_at,
			updated_at: $created_at
		})
		CREATE (e:Event {
			id: $event_id,
			action: $action,
			record_id: $id,
			record_name: $name,
			timestamp: $created_at,
			details: $metadata
		})
		CREATE (e)-[:ABOUT]->(p)
		RETURN p.id AS id
	`

	// DeletePersonQuery keeps past events; only their ABOUT edge goes away.
	DeletePersonQuery = `
		MATCH (p:Person {id: $id})
		WITH p, p.name AS name
		DETACH DELETE p
		CREATE (e:Event {
			id: $event_id,
			action: $action,
			record_id: $id,
			record_name: name,
			timestamp: $timestamp,
			details: '{}'
		})
		RETURN name
	`

	ListPersonsQuery = `
		MATCH (p:Person)
		RETURN p.id AS id, p.name AS name, p.encoding AS encoding, p.metadata AS metadata,
			p.created_at AS created_at, p.updated_at AS updated_at
		ORDER BY p.created_at ASC, p.name ASC
	`

	GetPersonQuery = `
		MATCH (p:Person {id: $id})
		RETURN p.id AS id, p.name AS name, p.encoding AS encoding, p.metadata AS metadata,
			p.created_at AS created_at, p.updated_at AS updated_at
	`

	ListEventsQuery = `
		MATCH (e:Event)
		RETURN e.id AS id, e.action AS action, e.record_id AS record_id, e.record_name AS record_name,
			e.timestamp AS timestamp, e.details AS details
		ORDER BY e.timestamp DESC, e.id DESC
		LIMIT $limit
	`
)
