package driver

// One traversal per conflict pattern. Every query is scoped to a single firm,
// restricted to opposition in active or pending cases, bounded to at most
// three hops, and capped by $limit. The hop bounds are load-bearing: the
// ownership and family subgraphs may contain cycles and the bound is what
// guarantees termination, so they are written into the pattern rather than
// taken from parameters.

const (
	// Subject directly opposes a represented client.
	DirectAdversaryQuery = `
		MATCH (s:Party {id: $subject_id, firm_id: $firm_id})<-[:OPPONENT]-(k:Case)-[:CLIENT]->(cl:Party)
		WHERE k.status IN ['active', 'pending']
		RETURN s.id AS entity_id,
			s.name AS entity_name,
			s.kind AS entity_kind,
			cl.id AS client_id,
			cl.name AS client_name,
			k.id AS case_id,
			k.name AS case_name
		LIMIT $limit
	`

	// Subject owns (directly or through up to three intermediaries) a company
	// opposed by a client. Reports the ownership chain and its depth.
	IndirectOwnershipQuery = `
		MATCH p = (s:Party {id: $subject_id, firm_id: $firm_id})-[:OWNS*1..3]->(t:Party)
		WHERE length(p) <= $max_depth
		MATCH (t)<-[:OPPONENT]-(k:Case)-[:CLIENT]->(cl:Party)
		WHERE k.status IN ['active', 'pending']
		RETURN t.id AS entity_id,
			t.name AS entity_name,
			t.kind AS entity_kind,
			cl.id AS client_id,
			cl.name AS client_name,
			k.id AS case_id,
			k.name AS case_name,
			[n IN nodes(p) | n.name] AS chain,
			length(p) AS depth
		LIMIT $limit
	`

	// A director of the subject company also directs a company opposed by a
	// client.
	DirectorOverlapQuery = `
		MATCH (d:Party)-[:DIRECTOR_OF]->(s:Party {id: $subject_id, firm_id: $firm_id})
		MATCH (d)-[:DIRECTOR_OF]->(o:Party)<-[:OPPONENT]-(k:Case)-[:CLIENT]->(cl:Party)
		WHERE o.id <> s.id AND k.status IN ['active', 'pending']
		RETURN o.id AS entity_id,
			o.name AS entity_name,
			o.kind AS entity_kind,
			cl.id AS client_id,
			cl.name AS client_name,
			k.id AS case_id,
			k.name AS case_name,
			d.name AS director
		LIMIT $limit
	`

	// Subject has a family relation to an opposed party.
	FamilyTieQuery = `
		MATCH (s:Party {id: $subject_id, firm_id: $firm_id})-[f:FAMILY]-(r:Party)<-[:OPPONENT]-(k:Case)-[:CLIENT]->(cl:Party)
		WHERE k.status IN ['active', 'pending']
		RETURN r.id AS entity_id,
			r.name AS entity_name,
			r.kind AS entity_kind,
			cl.id AS client_id,
			cl.name AS client_name,
			k.id AS case_id,
			k.name AS case_name,
			f.relation AS relation
		LIMIT $limit
	`

	// Subject holds a partnership stake above $min_stake percent in an opposed
	// company.
	BusinessPartnerQuery = `
		MATCH (s:Party {id: $subject_id, firm_id: $firm_id})-[pr:PARTNER_OF]-(o:Party)<-[:OPPONENT]-(k:Case)-[:CLIENT]->(cl:Party)
		WHERE pr.stake > $min_stake AND k.status IN ['active', 'pending']
		RETURN o.id AS entity_id,
			o.name AS entity_name,
			o.kind AS entity_kind,
			cl.id AS client_id,
			cl.name AS client_name,
			k.id AS case_id,
			k.name AS case_name,
			pr.stake AS stake
		LIMIT $limit
	`

	// Subject was represented elsewhere against a currently-opposed party, and
	// the representation ended after $cutoff.
	HistoricalConflictQuery = `
		MATCH (s:Party {id: $subject_id, firm_id: $firm_id})<-[:CLIENT]-(past:Case)-[:OPPONENT]->(x:Party)
		WHERE past.status = 'closed' AND past.ended >= $cutoff
		MATCH (x)<-[:OPPONENT]-(k:Case)-[:CLIENT]->(cl:Party)
		WHERE k.status IN ['active', 'pending']
		RETURN x.id AS entity_id,
			x.name AS entity_name,
			x.kind AS entity_kind,
			cl.id AS client_id,
			cl.name AS client_name,
			k.id AS case_id,
			k.name AS case_name,
			past.ended AS ended
		LIMIT $limit
	`

	// Subject company sits one or two hops below a parent opposed by a client.
	// Reports the corporate chain from subject to parent.
	GroupCompanyQuery = `
		MATCH p = (s:Party {id: $subject_id, firm_id: $firm_id})-[:SUBSIDIARY_OF*1..2]->(parent:Party)
		MATCH (parent)<-[:OPPONENT]-(k:Case)-[:CLIENT]->(cl:Party)
		WHERE k.status IN ['active', 'pending']
		RETURN parent.id AS entity_id,
			parent.name AS entity_name,
			parent.kind AS entity_kind,
			cl.id AS client_id,
			cl.name AS client_name,
			k.id AS case_id,
			k.name AS case_name,
			[n IN nodes(p) | n.name] AS chain
		LIMIT $limit
	`

	// Subject shares an accountant, notary or tax advisor with an opposed
	// party.
	ProfessionalOverlapQuery = `
		MATCH (s:Party {id: $subject_id, firm_id: $firm_id})-[:ADVISED_BY]->(adv:Party)<-[:ADVISED_BY]-(o:Party)
		WHERE adv.profession IN ['accountant', 'notary', 'tax_advisor'] AND o.id <> s.id
		MATCH (o)<-[:OPPONENT]-(k:Case)-[:CLIENT]->(cl:Party)
		WHERE k.status IN ['active', 'pending']
		RETURN o.id AS entity_id,
			o.name AS entity_name,
			o.kind AS entity_kind,
			cl.id AS client_id,
			cl.name AS client_name,
			k.id AS case_id,
			k.name AS case_name,
			adv.name AS advisor,
			adv.profession AS profession
		LIMIT $limit
	`
)
