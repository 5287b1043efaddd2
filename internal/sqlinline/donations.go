package sqlinline

const QDonorExists = `--sql 81930471-0de1-47e0-b991-3e7fe14dc0fa
select exists(select 1 from users where id = $1::bigint);
`

// QIncrementCampaignFunding takes the campaign row lock for the rest of the
// transaction. No row means the campaign does not exist.
const QIncrementCampaignFunding = `--sql 95e829be-b499-4651-8f99-d385674cc330
update campaigns
set raised = raised + $2::bigint,
    backers = backers + 1
where id = $1::bigint
returning id, raised, backers;
`

const QInsertDonation = `--sql 9694215b-aa5c-4ba4-a698-cd85d6514b2b
insert into donations(amount, campaign_id, user_id, anonymous, created_at)
values ($1::bigint, $2::bigint, $3::bigint, $4::boolean, now())
returning id, created_at;
`

const QListDonationsByCampaign = `--sql c02c2879-ffaf-4300-850d-4727f25d8399
select id, amount, campaign_id, user_id, anonymous, created_at
from donations
where campaign_id = $1::bigint
order by created_at desc, id desc;
`

const QFundingDrift = `--sql 779b2019-df89-4800-abb6-abdfe48f0395
select
  c.id,
  c.raised,
  c.backers,
  coalesce(sum(d.amount), 0)::bigint as actual_raised,
  count(d.id)::bigint as actual_backers
from campaigns c
left join donations d on d.campaign_id = c.id
group by c.id, c.raised, c.backers
having c.raised <> coalesce(sum(d.amount), 0) or c.backers <> count(d.id)
order by c.id;
`

const QRepairCampaignFunding = `--sql 9724920e-138a-4a78-aae8-de2b5444796f
update campaigns c
set raised = t.raised,
    backers = t.backers
from (
  select coalesce(sum(amount), 0)::bigint as raised, count(*)::int as backers
  from donations
  where campaign_id = $1::bigint
) t
where c.id = $1::bigint
returning c.id, c.raised, c.backers;
`

const QLockCampaign = `--sql d3fed95b-ffb3-4722-9cb9-80e28cbb6e1d
select id from campaigns where id = $1::bigint for update;
`
