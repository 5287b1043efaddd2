package sqlinline

const QListLocations = `--sql c67bbb10-88d7-4451-b709-1b51780e0c60
select id, name, latitude, longitude, type, campaign_id
from locations
order by id;
`

const QListLocationsByCampaign = `--sql da7eaad0-7819-45cb-b9af-59f8a3d81d67
select id, name, latitude, longitude, type, campaign_id
from locations
where campaign_id = $1::bigint
order by id;
`

const QInsertLocation = `--sql 85f67666-be5d-4280-bc96-28a60801b960
insert into locations(name, latitude, longitude, type, campaign_id)
values ($1::text, $2::double precision, $3::double precision, $4::text, $5::bigint)
returning id;
`
