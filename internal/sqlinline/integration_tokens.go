package sqlinline

const QEnsureIntegrationTokens = `--sql 3f0b6f0e-6c1a-4b57-9d0e-2f6a1d9b7c41
create table if not exists integration_tokens (
    id uuid primary key default gen_random_uuid(),
    provider text not null unique,
    token text not null,
    properties jsonb not null default '{}'::jsonb,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);
`

const QSelectIntegrationToken = `--sql 5b2d7e94-0a61-4c8f-b3e2-71c9a4f08d15
select token
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertIntegrationToken = `--sql c7e41a38-92b5-4f0d-8e6a-0d3b5f2c9a77
insert into integration_tokens (provider, token, properties)
values ($1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb))
on conflict (provider) do update set
    token = excluded.token,
    properties = excluded.properties,
    updated_at = now();
`
