package sqlinline

const campaignColumns = `id, title, description, category, goal, raised, backers, days_left,
  coalesce(image_url, ''), user_id, coalesce(location, ''), coalesce(owner_name, ''), deadline, created_at`

const QListCampaigns = `--sql c53b45a6-456c-4b49-a102-a428fd3c76f3
select ` + campaignColumns + `
from campaigns
order by created_at desc, id desc;
`

const QSelectCampaignByID = `--sql 57b7bf94-cbbd-4582-9032-147bee9ba7f5
select ` + campaignColumns + `
from campaigns
where id = $1::bigint
limit 1;
`

const QListCampaignsByCategory = `--sql fb377a1b-fe19-4892-ad19-4ade599f173b
select ` + campaignColumns + `
from campaigns
where lower(category) = lower($1::text)
order by created_at desc, id desc;
`

const QInsertCampaign = `--sql 811cbcbb-56eb-479f-acd1-a0e199c52e84
insert into campaigns(
  title,
  description,
  category,
  goal,
  raised,
  backers,
  days_left,
  image_url,
  user_id,
  location,
  owner_name,
  deadline,
  created_at
) values (
  $1::text,
  $2::text,
  $3::text,
  $4::bigint,
  0,
  0,
  $5::int,
  nullif($6::text, ''),
  $7::bigint,
  nullif($8::text, ''),
  nullif($9::text, ''),
  $10::timestamptz,
  $11::timestamptz
) returning id;
`

const QUpdateCampaignMetadata = `--sql 64d2ea2c-b156-4fec-b6a0-42b4e2c8e5d2
update campaigns set
  title       = coalesce($2::text, title),
  description = coalesce($3::text, description),
  category    = coalesce($4::text, category),
  goal        = coalesce($5::bigint, goal),
  image_url   = coalesce($6::text, image_url),
  location    = coalesce($7::text, location),
  owner_name  = coalesce($8::text, owner_name),
  deadline    = coalesce($9::timestamptz, deadline)
where id = $1::bigint
returning ` + campaignColumns + `;
`
