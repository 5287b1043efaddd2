package sqlinline

const QSelectUserByID = `--sql 21edd5c1-c532-4821-bf9a-87daafd48170
select id, username, email, coalesce(name, ''), password_hash
from users
where id = $1::bigint
limit 1;
`

const QSelectUserByUsername = `--sql bbddc490-f7ae-4e88-87bc-7896d6e28d88
select id, username, email, coalesce(name, ''), password_hash
from users
where username = $1::text
limit 1;
`

const QInsertUser = `--sql 164cdb98-705c-4a0c-8b6d-c908a2ab49ed
insert into users(username, email, name, password_hash, created_at)
values ($1::text, $2::text, nullif($3::text, ''), $4::text, now())
returning id;
`
