package sqlinline

const QListTestimonials = `--sql 215e4a1b-ee5f-4c8e-8ad2-04886fcfca9d
select id, name, role, content, coalesce(image_url, '')
from testimonials
order by id;
`

const QInsertTestimonial = `--sql 8e3cb125-cf81-4344-9eb2-2a84832047e1
insert into testimonials(name, role, content, image_url)
values ($1::text, $2::text, $3::text, nullif($4::text, ''))
returning id;
`
